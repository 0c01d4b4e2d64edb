package users

import (
	"net/http"

	"clustermap/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetProfile(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "User ID is required", nil, "missing user ID")
		return
	}

	token := ctx.GetString("access_token")

	profile, err := c.service.Profile(ctx.Request.Context(), token, id)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Failed to fetch user profile", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "User profile retrieved successfully", profile, nil)
}
