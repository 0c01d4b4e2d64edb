package venues

import (
	"time"

	"github.com/google/uuid"
)

// Venue is one campus in the registry. UpstreamID is the provider's venue
// id; all seatmap state in the store is namespaced by it.
type Venue struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name       string    `gorm:"not null" json:"name"`
	UpstreamID int       `gorm:"uniqueIndex;not null" json:"upstream_id"`
	Timezone   string    `json:"timezone"`
	Active     bool      `gorm:"default:true" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
