package seatmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func coords(hosts ...string) []*SeatCoordinate {
	out := make([]*SeatCoordinate, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, ParseSeatHost(h))
	}
	return out
}

func TestMergeMaximaGrows(t *testing.T) {
	m := MergeMaxima(nil, coords("z1r2p3", "z1r5p1", "z2r1p8"))

	want := Maxima{
		"Z1": {MaxRow: 5, MaxPost: 3},
		"Z2": {MaxRow: 1, MaxPost: 8},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("maxima mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMaximaDoesNotMutateInput(t *testing.T) {
	existing := Maxima{"Z1": {MaxRow: 2, MaxPost: 2}}
	_ = MergeMaxima(existing, coords("z1r9p9"))

	assert.Equal(t, Maxima{"Z1": {MaxRow: 2, MaxPost: 2}}, existing)
}

func TestMergeMaximaOrderIndependent(t *testing.T) {
	batch := coords("z1r3p2", "z2r1p6", "z1r1p7", "z3r4p1")

	all := MergeMaxima(nil, batch)

	// Any split over any order lands on the same maxima.
	split := MergeMaxima(MergeMaxima(nil, batch[2:]), batch[:2])
	if diff := cmp.Diff(all, split); diff != "" {
		t.Errorf("split merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMaximaIdempotent(t *testing.T) {
	batch := coords("z1r3p2", "z2r1p6")

	once := MergeMaxima(nil, batch)
	twice := MergeMaxima(once, batch)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("replayed merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMaximaNeverShrinks(t *testing.T) {
	existing := Maxima{"Z1": {MaxRow: 10, MaxPost: 10}}
	m := MergeMaxima(existing, coords("z1r2p2"))

	assert.Equal(t, ZoneExtent{MaxRow: 10, MaxPost: 10}, m["Z1"])
}

func TestMergeMaximaSkipsNil(t *testing.T) {
	m := MergeMaxima(nil, []*SeatCoordinate{nil, ParseSeatHost("z1r1p1"), nil})
	assert.Equal(t, Maxima{"Z1": {MaxRow: 1, MaxPost: 1}}, m)
}

func TestMaterializeGrid(t *testing.T) {
	zones := Materialize(Maxima{"Z1": {MaxRow: 2, MaxPost: 3}})

	want := []Zone{
		{
			Name: "Z1",
			Rows: []Row{
				{Name: "R1", Posts: []int{3, 2, 1}},
				{Name: "R2", Posts: []int{3, 2, 1}},
			},
		},
	}
	if diff := cmp.Diff(want, zones); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestMaterializeDropsEmptyZones(t *testing.T) {
	zones := Materialize(Maxima{
		"Z1": {MaxRow: 0, MaxPost: 5},
		"Z2": {MaxRow: 1, MaxPost: 1},
	})

	assert.Len(t, zones, 1)
	assert.Equal(t, "Z2", zones[0].Name)
}

func TestMaterializeZoneOrdering(t *testing.T) {
	zones := Materialize(Maxima{
		"Z10": {MaxRow: 1, MaxPost: 1},
		"Z2":  {MaxRow: 1, MaxPost: 1},
		"Z1":  {MaxRow: 1, MaxPost: 1},
	})

	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	// Numeric suffix ordering, not lexicographic.
	assert.Equal(t, []string{"Z1", "Z2", "Z10"}, names)
}

func TestMaterializeEmpty(t *testing.T) {
	assert.Empty(t, Materialize(nil))
	assert.Empty(t, Materialize(Maxima{}))
}
