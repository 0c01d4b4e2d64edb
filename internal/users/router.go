package users

import (
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(rg *gin.RouterGroup, controller *Controller, sessionAuth gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(sessionAuth)
	{
		users.GET("/:id", controller.GetProfile) // GET /api/v1/users/:id
	}
}
