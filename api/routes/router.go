// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"memoir/internal/activity"
	"memoir/internal/auth"
	"memoir/internal/notes"
	"memoir/internal/people"
	"memoir/internal/shared/config"
	"memoir/internal/shared/database"
	"memoir/internal/tags"
	"memoir/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	cache     cache.Service
	publisher activity.Publisher

	// Held for cross-service injection
	tagService    tags.Service
	personService people.Service
	noteService   notes.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, publisher activity.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		cache:     cacheService,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)

		// Tags first: notes and people validate references through the
		// tag service
		r.setupTagRoutes(api)
		r.setupPersonRoutes(api)
		r.setupNoteRoutes(api)
	}

	// The integrity guard needs both counters; wire them once every
	// service exists.
	r.tagService.SetNoteCounter(r.noteService)
	r.tagService.SetPersonCounter(r.personService)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "memoir",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "memoir",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)

	auth.SetupAuthRoutes(rg, authController)
}

func (r *Router) setupTagRoutes(rg *gin.RouterGroup) {
	tagRepo := tags.NewRepository(r.db.GetPostgreSQL())
	r.tagService = tags.NewService(tagRepo, r.cache, r.publisher)
	tagController := tags.NewController(r.tagService)

	tags.SetupTagRoutes(rg, tagController, r.config)
}

func (r *Router) setupPersonRoutes(rg *gin.RouterGroup) {
	personRepo := people.NewRepository(r.db.GetPostgreSQL())
	r.personService = people.NewService(personRepo, r.tagService, r.cache, r.publisher)
	personController := people.NewController(r.personService)

	people.SetupPersonRoutes(rg, personController, r.config)
}

func (r *Router) setupNoteRoutes(rg *gin.RouterGroup) {
	noteRepo := notes.NewRepository(r.db.GetPostgreSQL())
	r.noteService = notes.NewService(noteRepo, r.tagService, r.personService, r.cache, r.publisher)
	noteController := notes.NewController(r.noteService)

	notes.SetupNoteRoutes(rg, noteController, r.config)
}
