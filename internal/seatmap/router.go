package seatmap

import (
	"clustermap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatmapRoutes(rg *gin.RouterGroup, controller *Controller, sessionAuth gin.HandlerFunc) {
	maps := rg.Group("/map")
	maps.Use(sessionAuth)
	{
		maps.GET("/:venue", controller.GetMap) // GET /api/v1/map/:venue
	}

	admin := rg.Group("/admin/seatmap")
	admin.Use(sessionAuth, middleware.RequireStaff())
	{
		admin.GET("/:venue/record", controller.GetRawRecord) // GET /api/v1/admin/seatmap/:venue/record
		admin.POST("/:venue/rebuild", controller.Rebuild)    // POST /api/v1/admin/seatmap/:venue/rebuild
	}
}
