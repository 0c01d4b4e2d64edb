package venues

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for venue registry operations
type Repository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	GetBySlug(ctx context.Context, slug string) (*Venue, error)
	GetByUpstreamID(ctx context.Context, upstreamID int) (*Venue, error)
	List(ctx context.Context, activeOnly bool) ([]Venue, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, venue *Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).First(&venue, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).First(&venue, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repository) GetByUpstreamID(ctx context.Context, upstreamID int) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).First(&venue, "upstream_id = ?", upstreamID).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Venue, error) {
	var venues []Venue
	query := r.db.WithContext(ctx).Model(&Venue{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("slug ASC").Find(&venues).Error; err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Venue{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Venue{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
