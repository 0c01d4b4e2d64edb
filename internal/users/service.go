package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"clustermap/internal/shared/constants"
	"clustermap/internal/upstream"
	"clustermap/pkg/cache"
)

// ProfileResponse carries the provider's full user object untouched plus
// the derived fields the frontend popup needs.
type ProfileResponse struct {
	User    json.RawMessage `json:"user"`
	Derived Derived         `json:"derived"`
}

type Derived struct {
	Level       *float64 `json:"level"`
	Avatar      string   `json:"avatar"`
	AvatarLarge string   `json:"avatar_large"`
}

type Service interface {
	// Profile returns one user's full profile, cached briefly so repeated
	// popup clicks do not hammer the upstream API.
	Profile(ctx context.Context, token, id string) (*ProfileResponse, error)

	// SummariesByIDs bulk-fetches user summaries for the occupancy overlay.
	// Missing users degrade the overlay, never fail it.
	SummariesByIDs(ctx context.Context, token string, ids []int) (map[int]upstream.User, error)
}

type service struct {
	client upstream.Client
	store  cache.Service
}

func NewService(client upstream.Client, store cache.Service) Service {
	return &service{client: client, store: store}
}

func (s *service) Profile(ctx context.Context, token, id string) (*ProfileResponse, error) {
	cacheKey := constants.UserProfileKey(id)

	var cached ProfileResponse
	if err := s.store.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	raw, user, err := s.client.UserProfile(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}

	profile := &ProfileResponse{
		User: raw,
		Derived: Derived{
			Level:       user.PrimaryLevel(),
			Avatar:      user.Avatar(),
			AvatarLarge: user.AvatarLarge(),
		},
	}

	if err := s.store.Set(ctx, cacheKey, profile, constants.TTL_USER_PROFILE); err != nil {
		log.Printf("Warning: failed to cache user profile %s: %v", id, err)
	}

	return profile, nil
}

func (s *service) SummariesByIDs(ctx context.Context, token string, ids []int) (map[int]upstream.User, error) {
	return s.client.UsersByIDs(ctx, token, ids)
}
