package auth

import (
	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(router *gin.RouterGroup, controller Controller) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", controller.Register) // POST /api/v1/auth/register - Owner bootstrap
		authRoutes.POST("/login", controller.Login)       // POST /api/v1/auth/login - Issue access token
	}
}
