package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeatHost(t *testing.T) {
	tests := []struct {
		name string
		host string
		want *SeatCoordinate
	}{
		{
			name: "basic token",
			host: "z2r10p5",
			want: &SeatCoordinate{Zone: "Z2", Row: "R10", Post: 5},
		},
		{
			name: "uppercase token",
			host: "Z1R2P3",
			want: &SeatCoordinate{Zone: "Z1", Row: "R2", Post: 3},
		},
		{
			name: "leading zeros normalized",
			host: "z01r002p03",
			want: &SeatCoordinate{Zone: "Z1", Row: "R2", Post: 3},
		},
		{name: "not a seat", host: "garbage", want: nil},
		{name: "empty", host: "", want: nil},
		{name: "trailing text", host: "z1r2p3-extra", want: nil},
		{name: "missing post", host: "z1r2", want: nil},
		{name: "zero zone", host: "z0r2p3", want: nil},
		{name: "zero row", host: "z1r0p3", want: nil},
		{name: "zero post", host: "z1r2p0", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSeatHost(tt.host)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want.Zone, got.Zone)
				assert.Equal(t, tt.want.Row, got.Row)
				assert.Equal(t, tt.want.Post, got.Post)
			}
		})
	}
}

func TestParseSeatHostNumericOrdering(t *testing.T) {
	// The unexported numeric fields drive zone/row ordering downstream.
	c := ParseSeatHost("z12r34p2")
	assert.NotNil(t, c)
	assert.Equal(t, 12, c.zoneNum)
	assert.Equal(t, 34, c.rowNum)
}
