package notes

import (
	"memoir/internal/shared/config"
	"memoir/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupNoteRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public read routes
	publicNotes := router.Group("/notes")
	{
		publicNotes.GET("", controller.GetAllNotes) // GET /api/v1/notes - List notes sorted by date descending
		publicNotes.GET("/count", controller.Count) // GET /api/v1/notes/count - Estimated note count
		publicNotes.GET("/:id", controller.GetNote)
	}

	// Mutations require the owner token
	protectedNotes := router.Group("/notes")
	protectedNotes.Use(middleware.JWTAuthWithConfig(cfg))
	{
		protectedNotes.POST("", controller.CreateNote)
		protectedNotes.PUT("/:id", controller.UpdateNote)
		protectedNotes.DELETE("/:id", controller.DeleteNote)
	}
}
