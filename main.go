// @title Itinerary Builder API
// @version 1.0
// @description Weather-aware travel itineraries generated by an LLM.
// @BasePath /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/itinerary-builder/config"
	"github.com/NomadCrew/itinerary-builder/db"
	_ "github.com/NomadCrew/itinerary-builder/docs"
	"github.com/NomadCrew/itinerary-builder/handlers"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/router"
	"github.com/NomadCrew/itinerary-builder/services"
	"github.com/NomadCrew/itinerary-builder/store/postgres"
	"github.com/NomadCrew/itinerary-builder/web"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.NewPool(startupCtx, cfg.Database)
	if err != nil {
		cancelStartup()
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient, err := db.NewRedisClient(startupCtx, cfg.Redis)
	cancelStartup()
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	weatherCache := services.NewRedisWeatherCache(redisClient, time.Duration(cfg.Weather.CacheTTLMinutes)*time.Minute)
	weatherService := services.NewWeatherService(cfg.Weather, weatherCache)
	generator := services.NewGroqGenerator(cfg.LLM)
	itineraryStore := postgres.NewPgItineraryStore(pool)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	r := router.SetupRouter(router.Dependencies{
		Context:          appCtx,
		Config:           cfg,
		RedisClient:      redisClient,
		ItineraryHandler: handlers.NewItineraryHandler(weatherService, generator, itineraryStore),
		HealthHandler:    handlers.NewHealthHandler(healthService),
		PageHandler:      web.NewPageHandler(web.NewHTTPClient(cfg.Web.APIBaseURL)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment, "web_api_base_url", cfg.Web.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopApp()

	// Generation can take a while; give in-flight requests time to settle.
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exiting")
}
