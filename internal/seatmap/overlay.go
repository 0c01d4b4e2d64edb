package seatmap

import (
	"fmt"

	"clustermap/internal/upstream"
)

// Occupant is the user summary attached to an occupied seat.
type Occupant struct {
	ID          int      `json:"id"`
	Login       string   `json:"login"`
	Displayname string   `json:"displayname,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	AvatarLarge string   `json:"avatar_large,omitempty"`
	PoolYear    string   `json:"pool_year,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Staff       bool     `json:"staff,omitempty"`
	Alumni      bool     `json:"alumni,omitempty"`
	Level       *float64 `json:"level,omitempty"`
}

// SeatView is one seat with its live status.
type SeatView struct {
	Status string    `json:"status"`
	Post   int       `json:"post"`
	User   *Occupant `json:"user,omitempty"`
}

type RowView struct {
	Name  string     `json:"name"`
	Seats []SeatView `json:"seats"`
}

type ZoneView struct {
	Name string    `json:"name"`
	Rows []RowView `json:"rows"`
}

// Stats are aggregate occupancy counts, recomputed per request. Blocked
// seats come from geometry metadata and are counted, not derived here.
type Stats struct {
	Occupied int            `json:"occupied"`
	Free     int            `json:"free"`
	Blocked  int            `json:"blocked"`
	Promo    map[string]int `json:"promo"`
	Kind     map[string]int `json:"kind"`
}

// Overlay merges the currently active occupants onto the chosen geometry.
// Records with unparsable tokens are skipped; duplicate seat keys are
// last-write-wins in upstream order. Every geometry seat without an
// occupant is free.
func Overlay(zones []Zone, active []upstream.Location, users map[int]upstream.User) ([]ZoneView, *Stats) {
	occupied := make(map[string]*Occupant, len(active))
	for _, loc := range active {
		seat := ParseSeatHost(loc.Host)
		if seat == nil {
			continue
		}
		occupied[seatKey(seat.Zone, seat.Row, seat.Post)] = occupantFor(loc, users)
	}

	stats := &Stats{
		Promo: make(map[string]int),
		Kind:  make(map[string]int),
	}

	out := make([]ZoneView, 0, len(zones))
	for _, z := range zones {
		zv := ZoneView{Name: z.Name, Rows: make([]RowView, 0, len(z.Rows))}
		for _, r := range z.Rows {
			rv := RowView{Name: r.Name, Seats: make([]SeatView, 0, len(r.Posts))}
			for _, p := range r.Posts {
				seat := SeatView{Status: StatusFree, Post: p}
				if occ, ok := occupied[seatKey(z.Name, r.Name, p)]; ok {
					seat.Status = StatusOccupied
					seat.User = occ
				}
				rv.Seats = append(rv.Seats, seat)
				tally(stats, seat)
			}
			zv.Rows = append(zv.Rows, rv)
		}
		out = append(out, zv)
	}

	return out, stats
}

func seatKey(zone, row string, post int) string {
	return fmt.Sprintf("%s|%s|%d", zone, row, post)
}

func occupantFor(loc upstream.Location, users map[int]upstream.User) *Occupant {
	if loc.User == nil {
		return nil
	}

	u, ok := users[loc.User.ID]
	if !ok {
		// Bulk lookup missed this user; keep the minimal identity from the
		// location record so the seat still renders as occupied.
		return &Occupant{ID: loc.User.ID, Login: loc.User.Login}
	}

	return &Occupant{
		ID:          u.ID,
		Login:       u.Login,
		Displayname: u.Displayname,
		Avatar:      u.Avatar(),
		AvatarLarge: u.AvatarLarge(),
		PoolYear:    u.PoolYear,
		Kind:        u.Kind,
		Staff:       u.Staff,
		Alumni:      u.Alumni,
		Level:       u.PrimaryLevel(),
	}
}

func tally(stats *Stats, seat SeatView) {
	switch seat.Status {
	case StatusOccupied:
		stats.Occupied++
	case StatusBlocked:
		stats.Blocked++
	default:
		stats.Free++
	}

	if seat.Status != StatusOccupied || seat.User == nil {
		return
	}

	promo := seat.User.PoolYear
	if promo == "" {
		promo = "unknown"
	}
	stats.Promo[promo]++

	kind := seat.User.Kind
	if kind == "" {
		kind = "unknown"
	}
	stats.Kind[kind]++
}
