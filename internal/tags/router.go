package tags

import (
	"memoir/internal/shared/config"
	"memoir/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTagRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public read routes
	publicTags := router.Group("/tags")
	{
		publicTags.GET("", controller.GetAllTags)  // GET /api/v1/tags - List tags sorted by name
		publicTags.GET("/count", controller.Count) // GET /api/v1/tags/count - Estimated tag count
		publicTags.GET("/:id", controller.GetTag)  // GET /api/v1/tags/:id - Get tag by ID
	}

	// Mutations require the owner token
	protectedTags := router.Group("/tags")
	protectedTags.Use(middleware.JWTAuthWithConfig(cfg))
	{
		protectedTags.POST("", controller.CreateTag)       // POST /api/v1/tags - Create tag
		protectedTags.PUT("/:id", controller.UpdateTag)    // PUT /api/v1/tags/:id - Update tag
		protectedTags.DELETE("/:id", controller.DeleteTag) // DELETE /api/v1/tags/:id - Delete tag (guarded)
	}
}
