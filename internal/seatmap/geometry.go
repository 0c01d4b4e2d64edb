package seatmap

import (
	"sort"
	"strconv"
	"strings"
)

// ZoneExtent holds the observed upper bounds for one zone. The full grid is
// synthesized from these maxima without enumerating every seat.
type ZoneExtent struct {
	MaxRow  int `json:"maxRow"`
	MaxPost int `json:"maxPost"`
}

// Maxima maps zone name to its extent. Merging is monotone: a previously
// observed maximum never shrinks.
type Maxima map[string]ZoneExtent

// Row is one materialized row. Posts run maxPost..1 descending: physical
// seat numbering runs opposite to row numbering, and the renderer relies on
// this exact order.
type Row struct {
	Name  string `json:"name"`
	Posts []int  `json:"posts"`
}

// Zone is one materialized zone with rows R1..RmaxRow ascending.
type Zone struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// MergeMaxima folds a batch of coordinates into a copy of existing. It is
// pure and order-independent over the batch: merging in any split or order,
// or merging the same batch twice, yields identical maxima.
func MergeMaxima(existing Maxima, coords []*SeatCoordinate) Maxima {
	merged := make(Maxima, len(existing))
	for zone, ext := range existing {
		merged[zone] = ext
	}

	for _, c := range coords {
		if c == nil {
			continue
		}
		ext := merged[c.Zone]
		if c.rowNum > ext.MaxRow {
			ext.MaxRow = c.rowNum
		}
		if c.Post > ext.MaxPost {
			ext.MaxPost = c.Post
		}
		merged[c.Zone] = ext
	}

	return merged
}

// Materialize expands maxima into the renderable grid. Zones are ordered by
// ascending numeric suffix; zones with no observed rows are dropped.
func Materialize(maxima Maxima) []Zone {
	names := make([]string, 0, len(maxima))
	for name := range maxima {
		if maxima[name].MaxRow == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return zoneNumber(names[i]) < zoneNumber(names[j])
	})

	zones := make([]Zone, 0, len(names))
	for _, name := range names {
		ext := maxima[name]

		rows := make([]Row, 0, ext.MaxRow)
		for r := 1; r <= ext.MaxRow; r++ {
			posts := make([]int, 0, ext.MaxPost)
			for p := ext.MaxPost; p >= 1; p-- {
				posts = append(posts, p)
			}
			rows = append(rows, Row{Name: "R" + strconv.Itoa(r), Posts: posts})
		}

		zones = append(zones, Zone{Name: name, Rows: rows})
	}

	return zones
}

// zoneNumber extracts the numeric suffix from a zone label ("Z12" -> 12).
func zoneNumber(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "Z"))
	if err != nil {
		return 0
	}
	return n
}
