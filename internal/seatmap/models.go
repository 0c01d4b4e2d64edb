package seatmap

// Provenance tags on the cache record. The stale and fallback suffixes tell
// the presentation layer it is looking at best-effort data.
const (
	SourceIncremental = "host:incremental"
	SourceFallback    = "host:active|fallback"
	SourceNone        = "seatmap:none"
	StaleSuffix       = "|stale"
)

// Seat statuses in the occupancy overlay.
const (
	StatusOccupied = "occupied"
	StatusFree     = "free"
	StatusBlocked  = "blocked"
)

// CacheRecord is the persisted seatmap for one venue: geometry plus
// provenance. It is always written whole, never mutated in place, so
// concurrent readers only observe complete generations. GeneratedAt is unix
// milliseconds.
type CacheRecord struct {
	Source      string `json:"source"`
	GeneratedAt int64  `json:"generated_at"`
	HostsCount  int    `json:"hosts_count"`
	Maxima      Maxima `json:"maxima"`
	Zones       []Zone `json:"zones"`
}

// BuildError is the recorded outcome of a failed background build step,
// kept under a short-TTL key for observability.
type BuildError struct {
	At    string `json:"at"`
	Error string `json:"error"`
}

// StepResult summarizes one incremental build invocation.
type StepResult struct {
	Pages    int  `json:"pages"`     // pages fetched this invocation
	Hosts    int  `json:"hosts"`     // seat tokens collected this invocation
	NextPage int  `json:"next_page"` // resume point when not done
	Done     bool `json:"done"`      // crawl reached the last page
}

// Snapshot is the controller's answer for one request: the best available
// geometry plus build-state metadata. The record is never nil.
type Snapshot struct {
	Record    *CacheRecord
	Building  bool        // a build was scheduled by this request
	Notice    string      // why no build was scheduled ("cooldown", "locked")
	LastError *BuildError // most recent recorded build failure, if any
}
