package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"clustermap/internal/shared/config"
	"clustermap/internal/shared/constants"
	"clustermap/internal/upstream"
	"clustermap/pkg/cache"
)

var (
	ErrInvalidState   = errors.New("invalid or expired state")
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidToken   = errors.New("invalid token")
)

type Service interface {
	// BeginLogin stores a fresh anti-forgery state and returns the
	// provider's authorize URL to redirect the browser to.
	BeginLogin(ctx context.Context, redirectURI string) (string, error)

	// CompleteLogin consumes the state, exchanges the code for a provider
	// access token, creates a session and issues the API's own JWT.
	CompleteLogin(ctx context.Context, code, state, redirectURI string) (*LoginResult, error)

	// Identity resolves a bearer token to the provider identity behind it.
	Identity(ctx context.Context, tokenString string) (*upstream.User, error)
}

type service struct {
	store  cache.Service
	client upstream.Client
	config *config.Config
}

func NewService(store cache.Service, client upstream.Client, cfg *config.Config) Service {
	return &service{
		store:  store,
		client: client,
		config: cfg,
	}
}

func (s *service) BeginLogin(ctx context.Context, redirectURI string) (string, error) {
	state := uuid.NewString()

	if err := s.store.Set(ctx, constants.OAuthStateKey(state), 1, constants.TTL_OAUTH_STATE); err != nil {
		return "", fmt.Errorf("failed to store login state: %w", err)
	}

	return s.client.AuthorizeURL(redirectURI, state), nil
}

func (s *service) CompleteLogin(ctx context.Context, code, state, redirectURI string) (*LoginResult, error) {
	var one int
	if err := s.store.Get(ctx, constants.OAuthStateKey(state), &one); err != nil {
		return nil, ErrInvalidState
	}
	// State is single-use.
	if err := s.store.Delete(ctx, constants.OAuthStateKey(state)); err != nil {
		log.Printf("Warning: failed to consume login state: %v", err)
	}

	token, err := s.client.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	me, err := s.client.Me(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	sessionID := uuid.NewString()
	session := SessionData{
		AccessToken: token.AccessToken,
		Login:       me.Login,
	}
	if err := s.store.Set(ctx, constants.SessionKey(sessionID), session, constants.TTL_SESSION); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	signed, err := s.signAccessToken(sessionID, me.Login, me.Staff)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     signed,
		ExpiresIn: int64(s.config.JWT.JWTExpiresIn.Seconds()),
		Login:     me.Login,
		Staff:     me.Staff,
	}, nil
}

func (s *service) Identity(ctx context.Context, tokenString string) (*upstream.User, error) {
	session, err := ResolveSession(ctx, s.store, s.config, tokenString)
	if err != nil {
		return nil, err
	}
	return s.client.Me(ctx, session.AccessToken)
}

func (s *service) signAccessToken(sessionID, login string, staff bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid":   sessionID,
		"login": login,
		"staff": staff,
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   now.Add(s.config.JWT.JWTExpiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ResolveSession validates an API access token and loads the session behind
// it. The auth middleware and the auth service share this path.
func ResolveSession(ctx context.Context, store cache.Service, cfg *config.Config, tokenString string) (*SessionData, error) {
	claims, err := ParseAccessToken(cfg, tokenString)
	if err != nil {
		return nil, err
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, ErrInvalidToken
	}

	var session SessionData
	if err := store.Get(ctx, constants.SessionKey(sid), &session); err != nil {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// ParseAccessToken validates the signature and shape of an API access token.
func ParseAccessToken(cfg *config.Config, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
