package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"clustermap/internal/shared/config"
)

var (
	// ErrThrottled is returned on HTTP 429. Callers in the build pipeline
	// convert it into a cooldown window instead of retrying.
	ErrThrottled = errors.New("upstream throttled")

	// ErrUnavailable covers every other non-2xx response.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Client is the contract with the inventory/identity provider. All calls are
// authenticated with the requester's OAuth access token except ExchangeCode.
type Client interface {
	// ListLocations fetches one page of the venue's seat inventory.
	// With activeOnly, only currently occupied seats are returned.
	ListLocations(ctx context.Context, token, venueID string, page, pageSize int, activeOnly bool) ([]Location, error)

	// ListActiveLocations fetches the full list of currently occupied seats,
	// following pagination. Active sets are small; this stays cheap.
	ListActiveLocations(ctx context.Context, token, venueID string) ([]Location, error)

	// UsersByIDs bulk-fetches user summaries by id.
	UsersByIDs(ctx context.Context, token string, ids []int) (map[int]User, error)

	// UserProfile fetches one user's full profile. The raw payload is
	// returned alongside the decoded shape so the caller can pass the
	// provider object through untouched.
	UserProfile(ctx context.Context, token, id string) (json.RawMessage, *User, error)

	// Me fetches the identity behind the access token.
	Me(ctx context.Context, token string) (*User, error)

	// AuthorizeURL builds the provider's OAuth authorize redirect target.
	AuthorizeURL(redirectURI, state string) string

	// ExchangeCode trades an OAuth authorization code for an access token.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error)
}

type client struct {
	cfg  config.UpstreamConfig
	http *http.Client
}

func NewClient(cfg config.UpstreamConfig) Client {
	return &client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

const (
	activePageCap = 30 // safety cap when following active-set pagination
	usersChunk    = 90 // provider caps filter[id] lists around 100
)

func (c *client) ListLocations(ctx context.Context, token, venueID string, page, pageSize int, activeOnly bool) ([]Location, error) {
	q := url.Values{}
	q.Set("page[size]", strconv.Itoa(pageSize))
	q.Set("page[number]", strconv.Itoa(page))
	if activeOnly {
		q.Set("filter[active]", "true")
	}

	var locations []Location
	if err := c.getJSON(ctx, token, "/v2/campus/"+url.PathEscape(venueID)+"/locations", q, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *client) ListActiveLocations(ctx context.Context, token, venueID string) ([]Location, error) {
	const pageSize = 100
	var out []Location

	for page := 1; page <= activePageCap; page++ {
		chunk, err := c.ListLocations(ctx, token, venueID, page, pageSize, true)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if len(chunk) < pageSize {
			break
		}
	}

	return out, nil
}

func (c *client) UsersByIDs(ctx context.Context, token string, ids []int) (map[int]User, error) {
	users := make(map[int]User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	for i := 0; i < len(ids); i += usersChunk {
		end := i + usersChunk
		if end > len(ids) {
			end = len(ids)
		}

		parts := make([]string, 0, end-i)
		for _, id := range ids[i:end] {
			parts = append(parts, strconv.Itoa(id))
		}

		q := url.Values{}
		q.Set("filter[id]", strings.Join(parts, ","))
		q.Set("page[size]", "100")

		var chunk []User
		if err := c.getJSON(ctx, token, "/v2/users", q, &chunk); err != nil {
			// A failed chunk degrades the overlay to login-only identities;
			// it must not fail the map request.
			continue
		}
		for _, u := range chunk {
			users[u.ID] = u
		}
	}

	return users, nil
}

func (c *client) UserProfile(ctx context.Context, token, id string) (json.RawMessage, *User, error) {
	raw, err := c.getRaw(ctx, token, "/v2/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, nil, err
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, nil, fmt.Errorf("decode user profile: %w", err)
	}
	return raw, &user, nil
}

func (c *client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, token, "/v2/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	return c.cfg.BaseURL + "/oauth/authorize?" + q.Encode()
}

func (c *client) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: token exchange HTTP %d: %s", ErrUnavailable, res.StatusCode, string(body))
	}

	var token Token
	if err := json.NewDecoder(res.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &token, nil
}

func (c *client) getJSON(ctx context.Context, token, path string, q url.Values, dest interface{}) error {
	raw, err := c.getRaw(ctx, token, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *client) getRaw(ctx context.Context, token, path string, q url.Values) (json.RawMessage, error) {
	target := c.cfg.BaseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", ErrThrottled, path)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s HTTP %d", ErrUnavailable, path, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	return body, nil
}
