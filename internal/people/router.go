package people

import (
	"memoir/internal/shared/config"
	"memoir/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPersonRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public read routes
	publicPeople := router.Group("/people")
	{
		publicPeople.GET("", controller.GetAllPeople) // GET /api/v1/people - List people sorted by name
		publicPeople.GET("/count", controller.Count)  // GET /api/v1/people/count - Estimated person count
		publicPeople.GET("/:id", controller.GetPerson)
	}

	// Mutations require the owner token
	protectedPeople := router.Group("/people")
	protectedPeople.Use(middleware.JWTAuthWithConfig(cfg))
	{
		protectedPeople.POST("", controller.CreatePerson)
		protectedPeople.PUT("/:id", controller.UpdatePerson)
		protectedPeople.DELETE("/:id", controller.DeletePerson)
	}
}
