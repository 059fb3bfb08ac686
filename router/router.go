package router

import (
	"context"
	"time"

	"github.com/NomadCrew/itinerary-builder/config"
	"github.com/NomadCrew/itinerary-builder/handlers"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/middleware"
	"github.com/NomadCrew/itinerary-builder/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	pageLimiterSweepInterval = time.Minute
	pageLimiterIdleTTL       = 10 * time.Minute
)

// Dependencies holds everything the routes need. Context bounds background
// work started by the router; nil means it runs for the life of the process.
type Dependencies struct {
	Context          context.Context
	Config           *config.Config
	RedisClient      redis.Cmdable
	ItineraryHandler *handlers.ItineraryHandler
	HealthHandler    *handlers.HealthHandler
	PageHandler      *web.PageHandler
}

// SetupRouter configures the Gin engine with the web UI, the itinerary API
// and the operational endpoints.
func SetupRouter(deps Dependencies) *gin.Engine {
	log := logger.GetLogger()
	cfg := deps.Config

	r := gin.Default()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warnw("Invalid trusted proxies, trusting none", "proxies", cfg.Server.TrustedProxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&cfg.Server))
	r.Use(middleware.SecurityHeadersMiddleware(cfg))

	// Health and metrics
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Itinerary API
	api := r.Group("/api")
	{
		create := []gin.HandlerFunc{}
		if deps.RedisClient != nil {
			create = append(create, middleware.RedisRateLimiter(
				deps.RedisClient,
				"itinerary",
				cfg.RateLimit.ItineraryRequestsPerWindow,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
			))
		}
		create = append(create, deps.ItineraryHandler.CreateItineraryHandler)

		api.POST("/itinerary/", create...)
		api.GET("/itinerary/:id/", deps.ItineraryHandler.GetItineraryHandler)
		api.GET("/itineraries/", deps.ItineraryHandler.ListItinerariesHandler)
	}

	// Web UI
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pageLimiter := middleware.NewIPRateLimiter(cfg.Web.RequestsPerMinute, cfg.Web.Burst)
	pageLimiter.StartCleanup(ctx, pageLimiterSweepInterval, pageLimiterIdleTTL)
	pages := r.Group("/")
	pages.Use(pageLimiter.RateLimitWith(deps.PageHandler.RateLimited))
	{
		pages.GET("/", deps.PageHandler.ShowForm)
		pages.POST("/", deps.PageHandler.SubmitForm)
	}

	return r
}
