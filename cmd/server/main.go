package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/journey-feed-api/internal/api"
	"github.com/journey-feed-api/internal/config"
	"github.com/journey-feed-api/internal/database"
	"github.com/journey-feed-api/internal/metrics"
	"github.com/journey-feed-api/internal/repository"
	"github.com/journey-feed-api/internal/service"
	"github.com/journey-feed-api/internal/storage"
	"github.com/journey-feed-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Journey Feed API server...")

	gin.SetMode(gin.ReleaseMode)

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.Database.MigrationsPath, cfg.Database.MigrationVersion); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Connection pool gauges
	poolStats := metrics.NewPoolStatsCollector(db)
	poolStats.Start(15 * time.Second)
	defer poolStats.Stop()

	// Initialize object storage
	store, err := storage.NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize services
	services := service.NewServices(repos, store, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
