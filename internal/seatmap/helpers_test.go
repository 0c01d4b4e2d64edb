package seatmap

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"clustermap/internal/notifications"
	"clustermap/internal/shared/config"
	"clustermap/internal/upstream"
	"clustermap/pkg/cache"
	"clustermap/pkg/logger"
)

// fakeStore is an in-memory cache.Service with JSON round-tripping, so test
// values behave exactly like Redis-persisted ones.
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = raw
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStore) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func (f *fakeStore) SetIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = raw
	return true, nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// fakeClient stubs the upstream provider; only ListLocations matters to the
// build pipeline.
type fakeClient struct {
	listLocations func(page, pageSize int) ([]upstream.Location, error)
	calls         int
}

func (f *fakeClient) ListLocations(ctx context.Context, token, venueID string, page, pageSize int, activeOnly bool) ([]upstream.Location, error) {
	f.calls++
	return f.listLocations(page, pageSize)
}

func (f *fakeClient) ListActiveLocations(ctx context.Context, token, venueID string) ([]upstream.Location, error) {
	return nil, nil
}

func (f *fakeClient) UsersByIDs(ctx context.Context, token string, ids []int) (map[int]upstream.User, error) {
	return map[int]upstream.User{}, nil
}

func (f *fakeClient) UserProfile(ctx context.Context, token, id string) (json.RawMessage, *upstream.User, error) {
	return nil, nil, upstream.ErrUnavailable
}

func (f *fakeClient) Me(ctx context.Context, token string) (*upstream.User, error) {
	return nil, upstream.ErrUnavailable
}

func (f *fakeClient) AuthorizeURL(redirectURI, state string) string { return "" }

func (f *fakeClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*upstream.Token, error) {
	return nil, upstream.ErrUnavailable
}

// captureProducer records published build events.
type captureProducer struct {
	mu     sync.Mutex
	events []notifications.BuildEvent
}

func (c *captureProducer) PublishBuildEvent(ctx context.Context, event *notifications.BuildEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, *event)
	return nil
}

func (c *captureProducer) Close() error { return nil }

func (c *captureProducer) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func testSeatmapConfig() config.SeatmapConfig {
	return config.SeatmapConfig{
		RefreshInterval: 12 * time.Hour,
		RecordTTL:       7 * 24 * time.Hour,
		LockTTL:         60 * time.Second,
		CursorTTL:       time.Hour,
		ErrorTTL:        time.Hour,
		Cooldown:        10 * time.Minute,
		PageSize:        100,
		PagesPerRun:     3,
		PageDelay:       200 * time.Millisecond,
		BuildTimeout:    50 * time.Second,
	}
}

// newTestService wires a service with inline scheduling and no real sleeps.
// The returned slept slice records inter-page delays.
func newTestService(store cache.Service, client upstream.Client, producer notifications.Producer, at time.Time) (*service, *[]time.Duration) {
	slept := &[]time.Duration{}
	svc := &service{
		store:    store,
		client:   client,
		producer: producer,
		cfg:      testSeatmapConfig(),
		logger:   logger.GetDefault(),
		now:      func() time.Time { return at },
		sleep: func(ctx context.Context, d time.Duration) {
			*slept = append(*slept, d)
		},
		schedule: func(fn func()) { fn() },
	}
	return svc, slept
}

// fullPage builds pageSize seat locations in one zone, rows 1..pageSize.
func fullPage(zone, pageSize, firstRow int) []upstream.Location {
	out := make([]upstream.Location, 0, pageSize)
	for i := 0; i < pageSize; i++ {
		out = append(out, seatLocation(zone, firstRow+i, 4, i+1))
	}
	return out
}

func seatLocation(zone, row, post, userID int) upstream.Location {
	return upstream.Location{
		ID:   int64(userID),
		Host: hostToken(zone, row, post),
		User: &upstream.LocationUser{ID: userID, Login: "user" + strconv.Itoa(userID)},
	}
}

func hostToken(zone, row, post int) string {
	return "z" + strconv.Itoa(zone) + "r" + strconv.Itoa(row) + "p" + strconv.Itoa(post)
}
