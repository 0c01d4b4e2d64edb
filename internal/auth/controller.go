package auth

import (
	"errors"
	"net/http"
	"net/url"

	"clustermap/internal/shared/config"
	"clustermap/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	config  *config.Config
}

func NewController(service Service, cfg *config.Config) *Controller {
	return &Controller{service: service, config: cfg}
}

// Login redirects the browser to the provider's authorize page.
func (c *Controller) Login(ctx *gin.Context) {
	authorizeURL, err := c.service.BeginLogin(ctx.Request.Context(), c.callbackURI(ctx))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to begin login", nil, err.Error())
		return
	}

	ctx.Redirect(http.StatusFound, authorizeURL)
}

// Callback completes the OAuth exchange and hands the browser back to the
// frontend with the API's access token.
func (c *Controller) Callback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Missing code or state", nil, nil)
		return
	}

	result, err := c.service.CompleteLogin(ctx.Request.Context(), code, state, c.callbackURI(ctx))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrInvalidState) {
			status = http.StatusBadRequest
		}
		response.RespondJSON(ctx, "error", status, "Login failed", nil, err.Error())
		return
	}

	front, err := url.Parse(c.config.Upstream.FrontendURL)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Invalid frontend URL", nil, err.Error())
		return
	}
	q := front.Query()
	q.Set("token", result.Token)
	front.RawQuery = q.Encode()

	ctx.Redirect(http.StatusFound, front.String())
}

// Session validates the caller's token and returns the identity behind it.
func (c *Controller) Session(ctx *gin.Context) {
	token := ctx.GetString("access_token_raw")

	me, err := c.service.Identity(ctx.Request.Context(), token)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionExpired) {
			status = http.StatusUnauthorized
		}
		response.RespondJSON(ctx, "error", status, "Session check failed", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session is valid", gin.H{"me": me}, nil)
}

// callbackURI reconstructs this API's callback endpoint as the provider
// will call it.
func (c *Controller) callbackURI(ctx *gin.Context) string {
	scheme := "https"
	if ctx.Request.TLS == nil {
		scheme = "http"
	}
	if forwarded := ctx.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + ctx.Request.Host + c.config.GetAPIBasePath() + "/auth/callback"
}
