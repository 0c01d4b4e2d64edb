package venues

type CreateVenueRequest struct {
	Slug       string `json:"slug" binding:"required,min=2,max=64,lowercase"`
	Name       string `json:"name" binding:"required,min=2,max=128"`
	UpstreamID int    `json:"upstream_id" binding:"required,gt=0"`
	Timezone   string `json:"timezone" binding:"omitempty,max=64"`
	Active     *bool  `json:"active" binding:"omitempty"`
}

type UpdateVenueRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=128"`
	Timezone *string `json:"timezone" binding:"omitempty,max=64"`
	Active   *bool   `json:"active" binding:"omitempty"`
}
