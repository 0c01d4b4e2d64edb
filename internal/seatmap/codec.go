package seatmap

import (
	"regexp"
	"strconv"
)

// Seat hosts look like "z1r2p3" (zone 1, row 2, post 3), case-insensitive.
// Anything else is not a seat and is skipped, never treated as an error.
var hostPattern = regexp.MustCompile(`(?i)^z(\d+)r(\d+)p(\d+)$`)

// SeatCoordinate is the structured form of a seat host token. Zone and Row
// are normalized labels ("Z2", "R10") with leading zeros stripped.
type SeatCoordinate struct {
	Zone string `json:"zone"`
	Row  string `json:"row"`
	Post int    `json:"post"`

	zoneNum int
	rowNum  int
}

// ParseSeatHost parses a seat host token into a coordinate. It returns nil
// for tokens that do not encode a seat; callers skip those records.
func ParseSeatHost(host string) *SeatCoordinate {
	m := hostPattern.FindStringSubmatch(host)
	if m == nil {
		return nil
	}

	zone, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	post, err := strconv.Atoi(m[3])
	if err != nil {
		return nil
	}
	if zone < 1 || row < 1 || post < 1 {
		return nil
	}

	return &SeatCoordinate{
		Zone:    "Z" + strconv.Itoa(zone),
		Row:     "R" + strconv.Itoa(row),
		Post:    post,
		zoneNum: zone,
		rowNum:  row,
	}
}
