package seatmap

import (
	"testing"

	"clustermap/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZones() []Zone {
	return Materialize(Maxima{"Z1": {MaxRow: 2, MaxPost: 4}})
}

func TestOverlayMarksOccupiedSeat(t *testing.T) {
	level := 7.42
	users := map[int]upstream.User{
		1: {
			ID:          1,
			Login:       "alice",
			Displayname: "Alice",
			PoolYear:    "2024",
			Kind:        "student",
			CursusUsers: []upstream.CursusUser{{CursusID: 21, Level: &level}},
		},
	}
	active := []upstream.Location{seatLocation(1, 1, 4, 1)}

	zones, stats := Overlay(testZones(), active, users)

	require.Len(t, zones, 1)
	require.Len(t, zones[0].Rows, 2)

	// Posts run 4..1; the occupied seat is first in row R1.
	row1 := zones[0].Rows[0]
	assert.Equal(t, "R1", row1.Name)
	assert.Equal(t, StatusOccupied, row1.Seats[0].Status)
	require.NotNil(t, row1.Seats[0].User)
	assert.Equal(t, "alice", row1.Seats[0].User.Login)
	assert.Equal(t, "2024", row1.Seats[0].User.PoolYear)
	require.NotNil(t, row1.Seats[0].User.Level)
	assert.Equal(t, 7.42, *row1.Seats[0].User.Level)

	// Every other seat is free.
	for _, s := range row1.Seats[1:] {
		assert.Equal(t, StatusFree, s.Status)
		assert.Nil(t, s.User)
	}

	assert.Equal(t, 1, stats.Occupied)
	assert.Equal(t, 7, stats.Free)
	assert.Equal(t, 0, stats.Blocked)
	assert.Equal(t, map[string]int{"2024": 1}, stats.Promo)
	assert.Equal(t, map[string]int{"student": 1}, stats.Kind)
}

func TestOverlayMissingSummaryKeepsMinimalIdentity(t *testing.T) {
	active := []upstream.Location{seatLocation(1, 1, 1, 77)}

	zones, stats := Overlay(testZones(), active, nil)

	seat := zones[0].Rows[0].Seats[3] // post 1 is last in 4..1 order
	assert.Equal(t, StatusOccupied, seat.Status)
	require.NotNil(t, seat.User)
	assert.Equal(t, 77, seat.User.ID)
	assert.Equal(t, "user77", seat.User.Login)
	assert.Empty(t, seat.User.Displayname)

	// Unknown identity still counts, under the unknown buckets.
	assert.Equal(t, map[string]int{"unknown": 1}, stats.Promo)
	assert.Equal(t, map[string]int{"unknown": 1}, stats.Kind)
}

func TestOverlaySkipsUnparsableAndForeignSeats(t *testing.T) {
	active := []upstream.Location{
		{ID: 1, Host: "dump-cluster", User: &upstream.LocationUser{ID: 1, Login: "x"}},
		seatLocation(9, 1, 1, 2), // zone not in the geometry
	}

	zones, stats := Overlay(testZones(), active, nil)

	for _, z := range zones {
		for _, r := range z.Rows {
			for _, s := range r.Seats {
				assert.Equal(t, StatusFree, s.Status)
			}
		}
	}
	assert.Equal(t, 0, stats.Occupied)
	assert.Equal(t, 8, stats.Free)
}

func TestOverlayDuplicateSeatLastWriteWins(t *testing.T) {
	active := []upstream.Location{
		seatLocation(1, 2, 2, 10),
		seatLocation(1, 2, 2, 11),
	}

	zones, stats := Overlay(testZones(), active, nil)

	row2 := zones[0].Rows[1]
	seat := row2.Seats[2] // post 2 in 4..1 order
	require.NotNil(t, seat.User)
	assert.Equal(t, 11, seat.User.ID)
	assert.Equal(t, 1, stats.Occupied)
}

func TestOverlayLocationWithoutUser(t *testing.T) {
	active := []upstream.Location{
		{ID: 1, Host: hostToken(1, 1, 2), User: nil},
	}

	zones, stats := Overlay(testZones(), active, nil)

	seat := zones[0].Rows[0].Seats[2]
	assert.Equal(t, StatusOccupied, seat.Status)
	assert.Nil(t, seat.User)

	// Occupied but anonymous: counted in totals, absent from groupings.
	assert.Equal(t, 1, stats.Occupied)
	assert.Empty(t, stats.Promo)
	assert.Empty(t, stats.Kind)
}

func TestOverlayEmptyGeometry(t *testing.T) {
	zones, stats := Overlay(nil, []upstream.Location{seatLocation(1, 1, 1, 1)}, nil)

	assert.Empty(t, zones)
	assert.Equal(t, 0, stats.Occupied)
	assert.Equal(t, 0, stats.Free)
}
