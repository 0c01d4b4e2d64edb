package seatmap

import (
	"context"
	"errors"
	"log"
	"time"

	"clustermap/internal/notifications"
	"clustermap/internal/shared/config"
	"clustermap/internal/shared/constants"
	"clustermap/internal/upstream"
	"clustermap/pkg/cache"
	"clustermap/pkg/logger"
)

// Service is the seatmap cache: freshness decisions, single-flight build
// scheduling and incremental crawling. GetSnapshot never blocks the caller
// on upstream work and always returns usable geometry.
type Service interface {
	GetSnapshot(ctx context.Context, venueID, token string, activeHosts []string) *Snapshot

	// BuildStep runs one bounded crawl invocation synchronously. GetSnapshot
	// schedules it in the background; the admin rebuild endpoint calls it
	// directly. The caller must hold the build lock.
	BuildStep(ctx context.Context, venueID, token string) (*StepResult, error)

	// RawRecord returns the persisted cache record without freshness
	// decisions, for inspection.
	RawRecord(ctx context.Context, venueID string) (*CacheRecord, error)

	// AcquireLock atomically takes the per-venue build lock.
	AcquireLock(ctx context.Context, venueID string) (bool, error)

	// ReleaseLock drops the per-venue build lock ahead of its TTL.
	ReleaseLock(venueID string)
}

type service struct {
	store    cache.Service
	client   upstream.Client
	producer notifications.Producer
	cfg      config.SeatmapConfig
	logger   *logger.Logger

	// indirections for tests
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)
	schedule func(fn func())
}

func NewService(store cache.Service, client upstream.Client, producer notifications.Producer, cfg config.SeatmapConfig) Service {
	return &service{
		store:    store,
		client:   client,
		producer: producer,
		cfg:      cfg,
		logger:   logger.GetDefault(),
		now:      time.Now,
		sleep:    sleepCtx,
		schedule: func(fn func()) { go fn() },
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// GetSnapshot evaluates the per-venue freshness state machine:
//
//	FRESH             -> return the record as-is, no build
//	COOLING_DOWN      -> fallback, no build (checked before the lock)
//	BUILD_IN_PROGRESS -> fallback, no build
//	STALE_OR_MISSING  -> take the lock, schedule a background step, fallback
//
// The response is fully determined before any build starts.
func (s *service) GetSnapshot(ctx context.Context, venueID, token string, activeHosts []string) *Snapshot {
	now := s.now()

	prev := s.readRecord(ctx, venueID)
	hasPrev := prev != nil && len(prev.Zones) > 0 && len(prev.Maxima) > 0
	isFresh := hasPrev && now.UnixMilli()-prev.GeneratedAt < s.cfg.RefreshInterval.Milliseconds()

	lastErr := s.readBuildError(ctx, venueID)

	if isFresh {
		return &Snapshot{Record: prev, LastError: lastErr}
	}

	fallback := s.fallbackRecord(prev, hasPrev, activeHosts, now)

	// Cooldown suppresses builds even when no lock is held.
	var until int64
	if err := s.store.Get(ctx, constants.SeatmapCooldownKey(venueID), &until); err == nil && now.UnixMilli() < until {
		return &Snapshot{Record: fallback, Notice: "cooldown", LastError: lastErr}
	}

	// Lock acquisition is a single atomic create-if-absent; a lost race
	// means another build is already running.
	ok, err := s.AcquireLock(ctx, venueID)
	if err != nil || !ok {
		return &Snapshot{Record: fallback, Notice: "locked", LastError: lastErr}
	}

	s.schedule(func() {
		bctx, cancel := context.WithTimeout(context.Background(), s.cfg.BuildTimeout)
		defer cancel()
		// The lock is released on every exit path, including panics, so the
		// at-most-one-build window does not wait out the lock TTL.
		defer func() {
			if r := recover(); r != nil {
				log.Printf("seatmap build panic for venue %s: %v", venueID, r)
			}
			s.ReleaseLock(venueID)
		}()

		if _, err := s.BuildStep(bctx, venueID, token); err != nil {
			s.logger.LogBuildError(bctx, venueID, err)
		}
	})

	return &Snapshot{Record: fallback, Building: true, LastError: lastErr}
}

func (s *service) RawRecord(ctx context.Context, venueID string) (*CacheRecord, error) {
	var record CacheRecord
	if err := s.store.Get(ctx, constants.SeatmapRecordKey(venueID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *service) AcquireLock(ctx context.Context, venueID string) (bool, error) {
	return s.store.SetIfAbsent(ctx, constants.SeatmapLockKey(venueID), 1, s.cfg.LockTTL)
}

func (s *service) ReleaseLock(venueID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, constants.SeatmapLockKey(venueID)); err != nil {
		log.Printf("Warning: failed to release build lock for venue %s: %v", venueID, err)
	}
}

// readRecord treats a missing or undecodable record as absent; a corrupt
// record is rebuilt from scratch rather than failing the request.
func (s *service) readRecord(ctx context.Context, venueID string) *CacheRecord {
	var record CacheRecord
	err := s.store.Get(ctx, constants.SeatmapRecordKey(venueID), &record)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Warning: unreadable seatmap record for venue %s: %v", venueID, err)
		}
		return nil
	}
	return &record
}

func (s *service) readBuildError(ctx context.Context, venueID string) *BuildError {
	var buildErr BuildError
	if err := s.store.Get(ctx, constants.SeatmapErrorKey(venueID), &buildErr); err != nil {
		return nil
	}
	return &buildErr
}

// fallbackRecord is the best-effort answer while no fresh record exists:
// the stale record when there is one, otherwise geometry derived from the
// caller-supplied active seat tokens. With no data at all it degrades to an
// empty-but-valid record.
func (s *service) fallbackRecord(prev *CacheRecord, hasPrev bool, activeHosts []string, now time.Time) *CacheRecord {
	if hasPrev {
		stale := *prev
		stale.Source = prev.Source + StaleSuffix
		return &stale
	}

	coords := parseHosts(activeHosts)
	maxima := MergeMaxima(nil, coords)
	record := &CacheRecord{
		Source:      SourceFallback,
		GeneratedAt: now.UnixMilli(),
		HostsCount:  len(activeHosts),
		Maxima:      maxima,
		Zones:       Materialize(maxima),
	}
	if len(record.Zones) == 0 {
		record.Source = SourceNone
	}
	return record
}

func parseHosts(hosts []string) []*SeatCoordinate {
	coords := make([]*SeatCoordinate, 0, len(hosts))
	for _, h := range hosts {
		if c := ParseSeatHost(h); c != nil {
			coords = append(coords, c)
		}
	}
	return coords
}
