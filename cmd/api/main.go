// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/rebalancer/internal/api"
	"github.com/andresuchdata/rebalancer/internal/cache"
	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/repository/postgres"
	"github.com/andresuchdata/rebalancer/internal/service"
	"github.com/andresuchdata/rebalancer/internal/storage"
	"github.com/andresuchdata/rebalancer/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run lock and summary cache (noop when caching is disabled)
	locker, err := cache.NewRunLocker(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("run lock unavailable, falling back to in-process runs only")
		locker = cache.NewNoopRunLocker()
	}
	summaries, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("summary cache unavailable, continuing without it")
		summaries = cache.NewNoopSummaryCache()
	}

	var objectStore storage.ObjectStorage
	if cfg.Insights.Enabled && cfg.Insights.Bucket != "" {
		store, err := storage.NewMinioClient(cfg.Insights)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("insights object storage unavailable, writing locally only")
		} else {
			objectStore = store
		}
	}

	// Initialize services
	executor := service.NewExecutor(postgres.NewExecutionRepository(db))
	insights := service.NewInsightsService(cfg.Insights, objectStore)
	rebalancer := service.NewRebalancer(
		cfg,
		postgres.NewOutletRepository(db),
		postgres.NewSalesRepository(db),
		executor,
		insights,
		locker,
		summaries,
	)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Rebalancer: rebalancer,
		Summaries:  summaries,
		Insights:   cfg.Insights,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
