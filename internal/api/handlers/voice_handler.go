// internal/api/handlers/voice_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/soundpost/voicedrop/internal/service"
)

type VoiceHandler struct {
	voiceService *service.VoiceNoteService
	maxBytes     int64
}

func NewVoiceHandler(voiceService *service.VoiceNoteService, maxBytes int64) *VoiceHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &VoiceHandler{voiceService: voiceService, maxBytes: maxBytes}
}

// Upload accepts a multipart voice submission and runs the ingestion pipeline
func (h *VoiceHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "audio/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an audio recording"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	effect := c.PostForm("effect")
	userAgent := c.PostForm("userAgent")
	if userAgent == "" {
		userAgent = c.Request.UserAgent()
	}

	note, err := h.voiceService.Submit(c.Request.Context(), payload, contentType, effect, userAgent)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})
		case errors.Is(err, service.ErrUploadFailed):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to upload voice note",
				"details": err.Error(),
			})
		default:
			log.Error().Err(err).Msg("unexpected submit failure")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Voice note uploaded successfully",
		"id":      note.ID,
		"url":     note.RemoteURL,
	})
}

// ListNotes returns all registered notes, newest first
func (h *VoiceHandler) ListNotes(c *gin.Context) {
	notes, count := h.voiceService.ListNotes()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"notes":   notes,
	})
}

// MarkDownloaded flags a note as downloaded
func (h *VoiceHandler) MarkDownloaded(c *gin.Context) {
	id, ok := parseNoteID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voice note not found"})
		return
	}

	note, err := h.voiceService.MarkDownloaded(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voice note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Marked as downloaded",
		"note":    note,
	})
}

// DeleteNote removes a note from the remote store and the registry
func (h *VoiceHandler) DeleteNote(c *gin.Context) {
	id, ok := parseNoteID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Voice note not found"})
		return
	}

	if err := h.voiceService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Voice note not found"})
		case errors.Is(err, service.ErrDeleteFailed):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to delete voice note",
				"details": err.Error(),
			})
		default:
			log.Error().Err(err).Int("id", id).Msg("unexpected delete failure")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Voice note deleted successfully",
	})
}

// Health reports liveness and the current registry size
func (h *VoiceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "OK",
		"timestamp":  time.Now().Format(time.RFC3339),
		"totalNotes": h.voiceService.Count(),
	})
}

// parseNoteID parses the :id path parameter strictly; anything non-numeric
// names a record that cannot exist.
func parseNoteID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
