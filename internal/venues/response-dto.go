package venues

import "time"

type VenueResponse struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	UpstreamID int       `json:"upstream_id"`
	Timezone   string    `json:"timezone"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToVenueResponse(v *Venue) VenueResponse {
	return VenueResponse{
		ID:         v.ID.String(),
		Slug:       v.Slug,
		Name:       v.Name,
		UpstreamID: v.UpstreamID,
		Timezone:   v.Timezone,
		Active:     v.Active,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func ToVenueResponses(venues []Venue) []VenueResponse {
	out := make([]VenueResponse, 0, len(venues))
	for i := range venues {
		out = append(out, ToVenueResponse(&venues[i]))
	}
	return out
}
