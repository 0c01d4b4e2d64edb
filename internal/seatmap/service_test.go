package seatmap

import (
	"context"
	"testing"
	"time"

	"clustermap/internal/shared/constants"
	"clustermap/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecord(t *testing.T, store *fakeStore, generatedAt time.Time) *CacheRecord {
	t.Helper()
	maxima := Maxima{"Z1": {MaxRow: 2, MaxPost: 2}}
	record := &CacheRecord{
		Source:      SourceIncremental,
		GeneratedAt: generatedAt.UnixMilli(),
		HostsCount:  4,
		Maxima:      maxima,
		Zones:       Materialize(maxima),
	}
	require.NoError(t, store.Set(context.Background(), constants.SeatmapRecordKey(testVenue), record, time.Hour))
	return record
}

func emptyPageClient() *fakeClient {
	return &fakeClient{
		listLocations: func(page, pageSize int) ([]upstream.Location, error) {
			return nil, nil
		},
	}
}

func TestGetSnapshotFreshRecordServedAsIs(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeRecord(t, store, now.Add(-time.Hour))

	client := emptyPageClient()
	svc, _ := newTestService(store, client, &captureProducer{}, now)

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)

	assert.Equal(t, SourceIncremental, snap.Record.Source)
	assert.False(t, snap.Building)
	assert.Empty(t, snap.Notice)

	// No build scheduled: upstream untouched, no lock taken.
	assert.Equal(t, 0, client.calls)
	assert.False(t, store.has(constants.SeatmapLockKey(testVenue)))
}

func TestGetSnapshotFreshnessBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		age      time.Duration
		building bool
	}{
		{name: "just inside the window", age: 12*time.Hour - time.Millisecond, building: false},
		{name: "exactly at the window", age: 12 * time.Hour, building: true},
		{name: "just past the window", age: 12*time.Hour + time.Millisecond, building: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			writeRecord(t, store, now.Add(-tt.age))
			svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, now)

			snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)
			assert.Equal(t, tt.building, snap.Building)
		})
	}
}

func TestGetSnapshotStaleRecordTaggedAndRebuilt(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeRecord(t, store, now.Add(-13*time.Hour))

	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, now)

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)

	assert.True(t, snap.Building)
	assert.Equal(t, SourceIncremental+StaleSuffix, snap.Record.Source)
	// Stale geometry is served untouched while the rebuild runs.
	assert.Equal(t, 4, snap.Record.HostsCount)

	// Inline schedule ran the build to completion and released the lock.
	assert.False(t, store.has(constants.SeatmapLockKey(testVenue)))
}

func TestGetSnapshotCooldownSuppressesBuild(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeRecord(t, store, now.Add(-13*time.Hour))
	require.NoError(t, store.Set(context.Background(), constants.SeatmapCooldownKey(testVenue),
		now.Add(5*time.Minute).UnixMilli(), 10*time.Minute))

	client := emptyPageClient()
	svc, _ := newTestService(store, client, &captureProducer{}, now)

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)

	assert.False(t, snap.Building)
	assert.Equal(t, "cooldown", snap.Notice)
	assert.Equal(t, SourceIncremental+StaleSuffix, snap.Record.Source)

	// Cooldown wins before the lock is even attempted.
	assert.Equal(t, 0, client.calls)
	assert.False(t, store.has(constants.SeatmapLockKey(testVenue)))
}

func TestGetSnapshotExpiredCooldownAllowsBuild(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeRecord(t, store, now.Add(-13*time.Hour))

	// Marker still present but its wall-clock expiry has passed.
	require.NoError(t, store.Set(context.Background(), constants.SeatmapCooldownKey(testVenue),
		now.Add(-time.Second).UnixMilli(), 10*time.Minute))

	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, now)

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)
	assert.True(t, snap.Building)
}

func TestGetSnapshotLockHeldSkipsBuild(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeRecord(t, store, now.Add(-13*time.Hour))
	require.NoError(t, store.Set(context.Background(), constants.SeatmapLockKey(testVenue), 1, time.Minute))

	client := emptyPageClient()
	svc, _ := newTestService(store, client, &captureProducer{}, now)

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)

	assert.False(t, snap.Building)
	assert.Equal(t, "locked", snap.Notice)
	assert.Equal(t, 0, client.calls)

	// The foreign lock stays in place.
	assert.True(t, store.has(constants.SeatmapLockKey(testVenue)))
}

func TestGetSnapshotNoRecordFallsBackToActiveHosts(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var scheduled []func()
	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, now)
	svc.schedule = func(fn func()) { scheduled = append(scheduled, fn) }

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", []string{"z1r2p3", "z1r1p5", "nonsense"})

	assert.True(t, snap.Building)
	assert.Equal(t, SourceFallback, snap.Record.Source)
	assert.Equal(t, 3, snap.Record.HostsCount)
	assert.Equal(t, ZoneExtent{MaxRow: 2, MaxPost: 5}, snap.Record.Maxima["Z1"])
	assert.Equal(t, now.UnixMilli(), snap.Record.GeneratedAt)
	assert.Len(t, scheduled, 1)

	// While the build is pending the lock is held.
	assert.True(t, store.has(constants.SeatmapLockKey(testVenue)))

	// Running the scheduled step releases it.
	scheduled[0]()
	assert.False(t, store.has(constants.SeatmapLockKey(testVenue)))
}

func TestGetSnapshotNothingAtAllStillAnswers(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, time.Now())

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)

	require.NotNil(t, snap.Record)
	assert.Equal(t, SourceNone, snap.Record.Source)
	assert.Empty(t, snap.Record.Zones)
}

func TestGetSnapshotSurfacesLastBuildError(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	writeRecord(t, store, now.Add(-time.Hour))
	require.NoError(t, store.Set(context.Background(), constants.SeatmapErrorKey(testVenue),
		BuildError{At: "2026-03-01T11:00:00Z", Error: "upstream throttled"}, time.Hour))

	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, now)

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)
	require.NotNil(t, snap.LastError)
	assert.Equal(t, "upstream throttled", snap.LastError.Error)
}

func TestGetSnapshotCorruptRecordTreatedAsMissing(t *testing.T) {
	store := newFakeStore()
	store.data[constants.SeatmapRecordKey(testVenue)] = []byte(`{"generated_at":"not-a-number"}`)

	var scheduled []func()
	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, time.Now())
	svc.schedule = func(fn func()) { scheduled = append(scheduled, fn) }

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", []string{"z1r1p1"})

	assert.Equal(t, SourceFallback, snap.Record.Source)
	assert.True(t, snap.Building)
}

func TestScheduledBuildPanicReleasesLock(t *testing.T) {
	store := newFakeStore()
	client := &fakeClient{
		listLocations: func(page, pageSize int) ([]upstream.Location, error) {
			panic("upstream client bug")
		},
	}
	svc, _ := newTestService(store, client, &captureProducer{}, time.Now())

	snap := svc.GetSnapshot(context.Background(), testVenue, "tok", nil)

	assert.True(t, snap.Building)
	assert.False(t, store.has(constants.SeatmapLockKey(testVenue)))
}

func TestRawRecordMissReturnsError(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, time.Now())

	_, err := svc.RawRecord(context.Background(), testVenue)
	assert.Error(t, err)
}

func TestAcquireLockIsSingleFlight(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, emptyPageClient(), &captureProducer{}, time.Now())

	ok, err := svc.AcquireLock(context.Background(), testVenue)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AcquireLock(context.Background(), testVenue)
	require.NoError(t, err)
	assert.False(t, ok)

	svc.ReleaseLock(testVenue)

	ok, err = svc.AcquireLock(context.Background(), testVenue)
	require.NoError(t, err)
	assert.True(t, ok)
}
