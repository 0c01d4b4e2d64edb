package venues

import (
	"clustermap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, sessionAuth gin.HandlerFunc) {
	// Public registry reads
	venues := rg.Group("/venues")
	{
		venues.GET("", controller.ListVenues)   // GET /api/v1/venues
		venues.GET("/:id", controller.GetVenue) // GET /api/v1/venues/:id
	}

	// Registry administration
	admin := rg.Group("/admin/venues")
	admin.Use(sessionAuth, middleware.RequireStaff())
	{
		admin.POST("", controller.CreateVenue)       // POST /api/v1/admin/venues
		admin.PUT("/:id", controller.UpdateVenue)    // PUT /api/v1/admin/venues/:id
		admin.DELETE("/:id", controller.DeleteVenue) // DELETE /api/v1/admin/venues/:id
	}
}
