package domain

import "time"

// VoiceNote is one admin-visible metadata record for a stored recording.
// JSON field names match what the admin UI already consumes; cloudinaryUrl
// and publicId are legacy wire names for the remote object URL and key.
type VoiceNote struct {
	ID            int       `json:"id"`
	RemoteURL     string    `json:"cloudinaryUrl"`
	RemoteID      string    `json:"publicId"`
	Effect        string    `json:"effect"`
	CreatedAt     time.Time `json:"timestamp"`
	UserAgent     string    `json:"userAgent"`
	FileSize      int64     `json:"fileSize"`
	Duration      *float64  `json:"duration"` // not measured, always null
	Downloaded    bool      `json:"downloaded"`
	DownloadCount int       `json:"downloadCount"`
}
