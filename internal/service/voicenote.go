// internal/service/voicenote.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/soundpost/voicedrop/internal/domain"
	"github.com/soundpost/voicedrop/internal/registry"
	"github.com/soundpost/voicedrop/internal/storage"
)

const defaultContentType = "audio/webm"

// VoiceNoteService owns the ingestion pipeline and the admin operations over
// the registry. The registry lock is never held across a storage call; the
// network transfer happens first and the in-memory step only after the remote
// store has confirmed.
type VoiceNoteService struct {
	registry *registry.Registry
	store    storage.ObjectStorage
	folder   string
}

// NewVoiceNoteService builds the service. store may be nil when the process
// started without storage credentials; submissions then fail with
// ErrStorageUnconfigured instead of preventing startup.
func NewVoiceNoteService(reg *registry.Registry, store storage.ObjectStorage, folder string) *VoiceNoteService {
	if folder == "" {
		folder = "voice-notes"
	}
	return &VoiceNoteService{registry: reg, store: store, folder: folder}
}

// Submit runs one end-to-end upload: push the payload to the remote store
// under a fresh key, and only on confirmed success commit a registry record.
// On any storage failure no record exists afterward.
func (s *VoiceNoteService) Submit(ctx context.Context, payload []byte, contentType, effect, userAgent string) (domain.VoiceNote, error) {
	if len(payload) == 0 {
		return domain.VoiceNote{}, ErrEmptyPayload
	}
	if s.store == nil {
		return domain.VoiceNote{}, fmt.Errorf("%w: %w", ErrUploadFailed, ErrStorageUnconfigured)
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	key := s.objectKey()
	stored, err := s.store.Upload(ctx, key, payload, contentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("voice note upload failed")
		return domain.VoiceNote{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	note := s.registry.Insert(registry.InsertFields{
		RemoteURL: stored.URL,
		RemoteID:  stored.Key,
		Effect:    effect,
		UserAgent: userAgent,
		FileSize:  int64(len(payload)),
		CreatedAt: time.Now(),
	})

	log.Info().
		Int("id", note.ID).
		Str("key", stored.Key).
		Int64("size", note.FileSize).
		Str("effect", note.Effect).
		Msg("voice note stored")

	return note, nil
}

// ListNotes returns a newest-first snapshot and its length.
func (s *VoiceNoteService) ListNotes() ([]domain.VoiceNote, int) {
	notes := s.registry.List()
	return notes, len(notes)
}

// MarkDownloaded flags a note as downloaded and bumps its counter.
func (s *VoiceNoteService) MarkDownloaded(id int) (domain.VoiceNote, error) {
	note, ok := s.registry.MarkDownloaded(id)
	if !ok {
		return domain.VoiceNote{}, ErrNotFound
	}
	return note, nil
}

// Delete removes a note from both stores: remote object first, registry
// record only after the remote store confirmed. On remote failure the record
// stays, so the registry never points at objects it cannot account for.
func (s *VoiceNoteService) Delete(ctx context.Context, id int) error {
	note, ok := s.registry.FindByID(id)
	if !ok {
		return ErrNotFound
	}
	if s.store == nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, ErrStorageUnconfigured)
	}

	if err := s.store.Delete(ctx, note.RemoteID); err != nil {
		log.Error().Err(err).Int("id", id).Str("key", note.RemoteID).Msg("remote deletion failed, keeping record")
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	if _, ok := s.registry.Remove(id); ok {
		log.Info().Int("id", id).Str("key", note.RemoteID).Msg("voice note deleted")
	}
	return nil
}

// Count returns the number of registered notes.
func (s *VoiceNoteService) Count() int {
	return s.registry.Len()
}

// objectKey derives a per-submission key from the current time plus a short
// random suffix, so concurrent submissions in the same instant cannot collide.
func (s *VoiceNoteService) objectKey() string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%s/note_%d_%s", s.folder, time.Now().UnixNano(), hex.EncodeToString(suffix))
}
