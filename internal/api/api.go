// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/soundpost/voicedrop/internal/api/handlers"
	"github.com/soundpost/voicedrop/internal/api/middleware"
	"github.com/soundpost/voicedrop/internal/service"
)

func NewRouter(voiceService *service.VoiceNoteService, allowedOrigins []string, maxUploadBytes int64) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	if maxUploadBytes > 0 {
		router.MaxMultipartMemory = maxUploadBytes
	}

	voiceHandler := handlers.NewVoiceHandler(voiceService, maxUploadBytes)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/upload-voice", voiceHandler.Upload)
		apiGroup.GET("/health", voiceHandler.Health)

		adminGroup := apiGroup.Group("/admin")
		{
			adminGroup.GET("/voice-notes", voiceHandler.ListNotes)
			adminGroup.POST("/voice-notes/:id/downloaded", voiceHandler.MarkDownloaded)
			adminGroup.DELETE("/voice-notes/:id", voiceHandler.DeleteNote)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
