// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"clustermap/internal/auth"
	"clustermap/internal/notifications"
	"clustermap/internal/seatmap"
	"clustermap/internal/shared/config"
	"clustermap/internal/shared/database"
	"clustermap/internal/shared/middleware"
	"clustermap/internal/upstream"
	"clustermap/internal/users"
	"clustermap/internal/venues"
	"clustermap/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer

	store        cache.Service
	client       upstream.Client
	sessionAuth  gin.HandlerFunc
	usersService users.Service
	venueService venues.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer) *Router {
	store := cache.NewService(db.GetRedisClient())
	return &Router{
		config:      cfg,
		db:          db,
		producer:    producer,
		store:       store,
		client:      upstream.NewClient(cfg.Upstream),
		sessionAuth: middleware.SessionAuth(cfg, store),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupUserRoutes(api)
		r.setupVenueRoutes(api)
		r.setupSeatmapRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "clustermap-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "clustermap-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures OAuth login and session routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authService := auth.NewService(r.store, r.client, r.config)
	authController := auth.NewController(authService, r.config)

	auth.SetupAuthRoutes(rg, authController, r.sessionAuth)
}

// setupUserRoutes configures user profile routes
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	usersService := users.NewService(r.client, r.store)
	usersController := users.NewController(usersService)

	// Keep the service around for the seatmap overlay
	r.usersService = usersService

	users.SetupUserRoutes(rg, usersController, r.sessionAuth)
}

// setupVenueRoutes configures venue registry routes
func (r *Router) setupVenueRoutes(rg *gin.RouterGroup) {
	venueRepo := venues.NewRepository(r.db.GetPostgreSQL())
	venueService := venues.NewService(venueRepo, r.store)
	venueController := venues.NewController(venueService)

	// Keep the service around so seatmap routes can resolve venues
	r.venueService = venueService

	venues.SetupVenueRoutes(rg, venueController, r.sessionAuth)
}

// setupSeatmapRoutes configures the occupancy map and build routes
func (r *Router) setupSeatmapRoutes(rg *gin.RouterGroup) {
	seatmapService := seatmap.NewService(r.store, r.client, r.producer, r.config.Seatmap)
	seatmapController := seatmap.NewController(seatmapService, r.client, r.usersService, r.venueService)

	seatmap.SetupSeatmapRoutes(rg, seatmapController, r.sessionAuth)
}
