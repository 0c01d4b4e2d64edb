package venues

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"clustermap/internal/shared/constants"
	"clustermap/pkg/cache"
	"clustermap/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrVenueNotFound = errors.New("venue not found")

type Service interface {
	CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error)
	GetVenue(ctx context.Context, idOrSlug string) (*Venue, error)
	ListVenues(ctx context.Context, activeOnly bool) ([]Venue, error)
	UpdateVenue(ctx context.Context, id string, req UpdateVenueRequest) (*Venue, error)
	DeleteVenue(ctx context.Context, id string) error

	// ResolveUpstreamID maps a venue id, slug, or raw upstream id to the
	// upstream venue id used for seatmap state.
	ResolveUpstreamID(ctx context.Context, idOrSlug string) (string, error)
}

type service struct {
	repo   Repository
	store  cache.Service
	logger *logger.Logger
}

func NewService(repo Repository, store cache.Service) Service {
	return &service{
		repo:   repo,
		store:  store,
		logger: logger.GetDefault(),
	}
}

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	existing, err := s.repo.GetBySlug(ctx, req.Slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check venue slug: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("venue with slug '%s' already exists", req.Slug)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	venue := &Venue{
		ID:         uuid.New(),
		Slug:       req.Slug,
		Name:       req.Name,
		UpstreamID: req.UpstreamID,
		Timezone:   req.Timezone,
		Active:     active,
	}

	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	s.invalidateCache(ctx)
	return venue, nil
}

func (s *service) GetVenue(ctx context.Context, idOrSlug string) (*Venue, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		venue, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVenueNotFound
			}
			return nil, fmt.Errorf("failed to get venue: %w", err)
		}
		return venue, nil
	}
	return s.getBySlug(ctx, idOrSlug)
}

func (s *service) getBySlug(ctx context.Context, slug string) (*Venue, error) {
	cacheKey := constants.VenueBySlugKey(slug)

	var cached Venue
	if err := s.store.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	venue, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	if err := s.store.Set(ctx, cacheKey, venue, constants.TTL_VENUE_DETAIL); err != nil {
		s.logger.WithError(err).Warn("failed to cache venue detail")
	}
	return venue, nil
}

func (s *service) ListVenues(ctx context.Context, activeOnly bool) ([]Venue, error) {
	if activeOnly {
		var cached []Venue
		if err := s.store.Get(ctx, constants.CACHE_KEY_VENUES_LIST, &cached); err == nil {
			return cached, nil
		}
	}

	venues, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	if activeOnly {
		if err := s.store.Set(ctx, constants.CACHE_KEY_VENUES_LIST, venues, constants.TTL_VENUES_LIST); err != nil {
			s.logger.WithError(err).Warn("failed to cache venues list")
		}
	}
	return venues, nil
}

func (s *service) UpdateVenue(ctx context.Context, id string, req UpdateVenueRequest) (*Venue, error) {
	venueID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid venue ID: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	if err := s.repo.Update(ctx, venueID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}

	s.invalidateCache(ctx)
	return s.repo.GetByID(ctx, venueID)
}

func (s *service) DeleteVenue(ctx context.Context, id string) error {
	venueID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid venue ID: %w", err)
	}

	if err := s.repo.Delete(ctx, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVenueNotFound
		}
		return fmt.Errorf("failed to delete venue: %w", err)
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *service) ResolveUpstreamID(ctx context.Context, idOrSlug string) (string, error) {
	// Raw numeric ids pass straight through so callers can address venues
	// not yet present in the registry.
	if _, err := strconv.Atoi(idOrSlug); err == nil {
		return idOrSlug, nil
	}

	venue, err := s.GetVenue(ctx, idOrSlug)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(venue.UpstreamID), nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if err := s.store.DeletePattern(ctx, constants.PATTERN_INVALIDATE_VENUES_ALL); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate venue caches")
	}
}
