package auth

import (
	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, sessionAuth gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.GET("/login", controller.Login)       // GET /api/v1/auth/login
		authGroup.GET("/callback", controller.Callback) // GET /api/v1/auth/callback

		authGroup.GET("/session", sessionAuth, controller.Session) // GET /api/v1/auth/session
	}
}
