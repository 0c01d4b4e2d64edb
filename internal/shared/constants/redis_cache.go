package constants

import "time"

// Redis key scheme and TTL values for clustermap.
// Pattern: clustermap:{module}:{kind}:{identifier}
//
// All cross-request coordination state (seatmap records, build cursors,
// build locks, cooldown markers, build errors, sessions, profile cache)
// lives in Redis under these keys. Every seatmap key is namespaced by the
// upstream venue id so venues never interact.

const CACHE_PREFIX = "clustermap"

// ================== SEATMAP MODULE ==================

// Seatmap state kinds. One builder function per kind; call sites never
// concatenate key fragments themselves.
const (
	cacheKeySeatmapRecord   = CACHE_PREFIX + ":seatmap:record:venue:"
	cacheKeySeatmapCursor   = CACHE_PREFIX + ":seatmap:cursor:venue:"
	cacheKeySeatmapLock     = CACHE_PREFIX + ":seatmap:lock:venue:"
	cacheKeySeatmapCooldown = CACHE_PREFIX + ":seatmap:cooldown:venue:"
	cacheKeySeatmapError    = CACHE_PREFIX + ":seatmap:err:venue:"
)

// SeatmapRecordKey is the durable per-venue seatmap cache record.
func SeatmapRecordKey(venueID string) string { return cacheKeySeatmapRecord + venueID }

// SeatmapCursorKey holds the next upstream page while an incremental
// build is incomplete. Deleted on completion.
func SeatmapCursorKey(venueID string) string { return cacheKeySeatmapCursor + venueID }

// SeatmapLockKey is the ephemeral build lock. Created with SetNX only.
func SeatmapLockKey(venueID string) string { return cacheKeySeatmapLock + venueID }

// SeatmapCooldownKey suppresses new builds after upstream throttling.
func SeatmapCooldownKey(venueID string) string { return cacheKeySeatmapCooldown + venueID }

// SeatmapErrorKey records the last background build error for observability.
func SeatmapErrorKey(venueID string) string { return cacheKeySeatmapError + venueID }

// Seatmap TTLs. The record outlives its freshness window so a stale
// record can still serve as fallback until retention lapses.
const (
	TTL_SEATMAP_RECORD = 7 * 24 * time.Hour
	TTL_SEATMAP_CURSOR = 1 * time.Hour
	TTL_SEATMAP_LOCK   = 60 * time.Second
	TTL_SEATMAP_ERROR  = 1 * time.Hour

	SEATMAP_REFRESH_INTERVAL = 12 * time.Hour
	SEATMAP_BUILD_COOLDOWN   = 10 * time.Minute
	SEATMAP_REFRESH_COOLDOWN = 30 * time.Minute
)

// ================== AUTH MODULE ==================

const (
	cacheKeyOAuthState = CACHE_PREFIX + ":auth:state:"
	cacheKeySession    = CACHE_PREFIX + ":auth:session:"
)

func OAuthStateKey(state string) string { return cacheKeyOAuthState + state }

func SessionKey(sessionID string) string { return cacheKeySession + sessionID }

const (
	TTL_OAUTH_STATE = 10 * time.Minute
	TTL_SESSION     = 2 * time.Hour
)

// ================== USERS MODULE ==================

const cacheKeyUserProfile = CACHE_PREFIX + ":users:profile:"

func UserProfileKey(userID string) string { return cacheKeyUserProfile + userID }

// Profile cache keeps repeated popup clicks off the upstream API.
const TTL_USER_PROFILE = 5 * time.Minute

// ================== VENUES MODULE ==================

const (
	cacheKeyVenueBySlug   = CACHE_PREFIX + ":venues:detail:slug:"
	CACHE_KEY_VENUES_LIST = CACHE_PREFIX + ":venues:list:active"
)

func VenueBySlugKey(slug string) string { return cacheKeyVenueBySlug + slug }

const (
	TTL_VENUE_DETAIL = 12 * time.Hour
	TTL_VENUES_LIST  = 12 * time.Hour
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_VENUES_ALL = CACHE_PREFIX + ":venues:*"
)
