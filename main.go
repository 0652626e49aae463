package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ytfetch/config"
	"ytfetch/internal/extractor"
	"ytfetch/internal/handler"
	"ytfetch/internal/service"
	"ytfetch/internal/storage"
	"ytfetch/pkg/logger"
	"ytfetch/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting ytfetch server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	// Initialize storage manager
	storageManager := storage.NewManager(&cfg.Storage)
	if err := storageManager.EnsureDirs(); err != nil {
		logger.Logger.Fatal("Failed to create working directories", zap.Error(err))
	}
	storageManager.Start()
	defer storageManager.Stop()

	// Initialize extractor client
	ytdlp := extractor.New(&cfg.Extractor)
	if !ytdlp.Available() {
		logger.Logger.Warn("yt-dlp not found on PATH; metadata and downloads will fail until it is installed",
			zap.String("bin", cfg.Extractor.BinPath))
	}

	// Initialize services
	videoService := service.NewVideoService(ytdlp)
	downloadService := service.NewDownloadService(ytdlp, storageManager)
	statsService := service.NewStatsService(storageManager)

	rateLimitService := service.NewRateLimitService(&cfg.RateLimit)
	defer rateLimitService.Stop()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add middleware
	router.Use(logger.GinLogger())

	// Public frontend
	webPath := "./web"
	staticPath := filepath.Join(webPath, "static")
	indexPath := filepath.Join(webPath, "index.html")

	router.Static("/static", staticPath)
	router.StaticFile("/", indexPath)

	// API handlers
	videoHandler := handler.NewVideoHandler(videoService, statsService, ytdlp, cfg)
	downloadHandler := handler.NewDownloadHandler(downloadService, statsService, cfg)

	api := router.Group("/api")
	api.Use(middleware.StatsMiddleware(statsService))

	// Health check and counters stay outside the rate limit so the
	// client's status poll never eats into it.
	api.GET("/health", videoHandler.HealthCheck)
	api.GET("/stats", videoHandler.Stats)

	// Extractor-backed endpoints
	limited := api.Group("")
	if cfg.RateLimit.Enabled {
		limited.Use(middleware.RateLimitMiddleware(rateLimitService, cfg.RateLimit.RequestsPerMinute))
		logger.Logger.Info("Rate limiting enabled", zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute))
	}
	limited.GET("/video-info", videoHandler.GetVideoInfo)
	limited.GET("/formats", videoHandler.ListFormats)
	limited.GET("/download", downloadHandler.Download)

	// Unknown routes get a JSON 404 instead of gin's plain text.
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Endpoint not found",
			"available_endpoints": []string{
				"/api/video-info", "/api/formats", "/api/download", "/api/health", "/api/stats",
			},
		})
	})

	// Start server. The write timeout must cover a full fetch plus
	// streaming the file back, so it follows the download timeout.
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Extractor.DownloadTimeout+cfg.Server.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server stopped")
}
