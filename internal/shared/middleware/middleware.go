package middleware

import (
	"net/http"
	"strings"

	"clustermap/internal/auth"
	"clustermap/internal/shared/config"
	"clustermap/internal/shared/utils/response"
	"clustermap/pkg/cache"

	"github.com/gin-gonic/gin"
)

// SessionAuth validates the API's bearer token and resolves the session
// behind it, placing the upstream access token into the request context.
// Every upstream call downstream of this middleware runs with the
// requester's own provider credentials.
func SessionAuth(cfg *config.Config, store cache.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims, err := auth.ParseAccessToken(cfg, tokenString)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		session, err := auth.ResolveSession(c.Request.Context(), store, cfg, tokenString)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "session expired", nil, nil)
			c.Abort()
			return
		}

		c.Set("access_token_raw", tokenString)
		c.Set("access_token", session.AccessToken)
		c.Set("login", session.Login)
		if staff, ok := claims["staff"].(bool); ok {
			c.Set("staff", staff)
		}

		c.Next()
	}
}

// RequireStaff restricts a route to staff identities. Staff status comes
// from the provider via the signed token claims.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, exists := c.Get("staff")
		if !exists || staff != true {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
