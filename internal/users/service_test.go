package users

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"clustermap/internal/shared/constants"
	"clustermap/internal/upstream"
	"clustermap/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeStore) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func (f *fakeStore) SetIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	return true, f.Set(ctx, key, value, ttl)
}

func (f *fakeStore) Exists(ctx context.Context, key string) bool {
	_, ok := f.data[key]
	return ok
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

type fakeUpstream struct {
	profileCalls int
	profileRaw   json.RawMessage
	profileUser  *upstream.User
}

func (f *fakeUpstream) ListLocations(ctx context.Context, token, venueID string, page, pageSize int, activeOnly bool) ([]upstream.Location, error) {
	return nil, nil
}

func (f *fakeUpstream) ListActiveLocations(ctx context.Context, token, venueID string) ([]upstream.Location, error) {
	return nil, nil
}

func (f *fakeUpstream) UsersByIDs(ctx context.Context, token string, ids []int) (map[int]upstream.User, error) {
	return map[int]upstream.User{}, nil
}

func (f *fakeUpstream) UserProfile(ctx context.Context, token, id string) (json.RawMessage, *upstream.User, error) {
	f.profileCalls++
	if f.profileUser == nil {
		return nil, nil, upstream.ErrUnavailable
	}
	return f.profileRaw, f.profileUser, nil
}

func (f *fakeUpstream) Me(ctx context.Context, token string) (*upstream.User, error) {
	return nil, upstream.ErrUnavailable
}

func (f *fakeUpstream) AuthorizeURL(redirectURI, state string) string { return "" }

func (f *fakeUpstream) ExchangeCode(ctx context.Context, code, redirectURI string) (*upstream.Token, error) {
	return nil, upstream.ErrUnavailable
}

func TestProfilePassesRawPayloadAndDerivesFields(t *testing.T) {
	level := 11.3
	client := &fakeUpstream{
		profileRaw: json.RawMessage(`{"id":7,"login":"bob","custom_field":"preserved"}`),
		profileUser: &upstream.User{
			ID:    7,
			Login: "bob",
			Image: upstream.Image{
				Link:     "https://img.example/bob.jpg",
				Versions: upstream.ImageVersions{Medium: "https://img.example/bob-md.jpg", Large: "https://img.example/bob-lg.jpg"},
			},
			CursusUsers: []upstream.CursusUser{{CursusID: 21, Level: &level}},
		},
	}
	svc := NewService(client, newFakeStore())

	profile, err := svc.Profile(context.Background(), "tok", "7")
	require.NoError(t, err)

	// The provider payload goes through byte for byte.
	assert.JSONEq(t, `{"id":7,"login":"bob","custom_field":"preserved"}`, string(profile.User))

	assert.Equal(t, "https://img.example/bob-md.jpg", profile.Derived.Avatar)
	assert.Equal(t, "https://img.example/bob-lg.jpg", profile.Derived.AvatarLarge)
	require.NotNil(t, profile.Derived.Level)
	assert.Equal(t, 11.3, *profile.Derived.Level)
}

func TestProfileIsCached(t *testing.T) {
	store := newFakeStore()
	client := &fakeUpstream{
		profileRaw:  json.RawMessage(`{"id":7,"login":"bob"}`),
		profileUser: &upstream.User{ID: 7, Login: "bob"},
	}
	svc := NewService(client, store)

	_, err := svc.Profile(context.Background(), "tok", "7")
	require.NoError(t, err)
	assert.True(t, store.Exists(context.Background(), constants.UserProfileKey("7")))

	_, err = svc.Profile(context.Background(), "tok", "7")
	require.NoError(t, err)
	assert.Equal(t, 1, client.profileCalls)
}

func TestProfileUpstreamFailure(t *testing.T) {
	svc := NewService(&fakeUpstream{}, newFakeStore())

	_, err := svc.Profile(context.Background(), "tok", "7")
	assert.Error(t, err)
}
