// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundpost/voicedrop/internal/api"
	"github.com/soundpost/voicedrop/internal/config"
	"github.com/soundpost/voicedrop/internal/registry"
	"github.com/soundpost/voicedrop/internal/service"
	"github.com/soundpost/voicedrop/internal/storage"
	"github.com/soundpost/voicedrop/pkg/logger"
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

	// Initialize the object store client. Missing credentials are not fatal:
	// the server still comes up and uploads fail at request time.
	var store storage.ObjectStorage
	if cfg.Storage.Configured() {
		client, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			UseSSL:        cfg.Storage.UseSSL,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Timeout:       time.Duration(cfg.Storage.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage client")
		}
		store = client
	} else {
		logger.Log.Warn().Msg("Object storage credentials not configured; uploads will fail until they are provided")
	}

	// Initialize registry and services
	reg := registry.New()
	voiceService := service.NewVoiceNoteService(reg, store, cfg.Storage.Folder)

	// Initialize HTTP server
	router := api.NewRouter(voiceService, cfg.Server.AllowedOrigins, cfg.Upload.MaxBytes)
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

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
