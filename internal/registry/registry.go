// internal/registry/registry.go
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/soundpost/voicedrop/internal/domain"
)

const (
	// maxUserAgentLen caps the stored client hint.
	maxUserAgentLen = 100

	unknownValue = "unknown"
)

// InsertFields carries the write-once fields for a new record. ID and the
// download state are assigned by the registry itself.
type InsertFields struct {
	RemoteURL string
	RemoteID  string
	Effect    string
	UserAgent string
	FileSize  int64
	CreatedAt time.Time
}

// Registry is the authoritative in-memory collection of voice notes. It is
// intentionally volatile: empty at process start, gone at process end. A
// single mutex guards the collection and the id counter; ids only increase
// and are never reused, even after removal.
type Registry struct {
	mu     sync.Mutex
	nextID int
	notes  []*domain.VoiceNote
}

func New() *Registry {
	return &Registry{nextID: 1}
}

// Insert assigns the next id and appends a new record. Empty effect and
// user agent fall back to "unknown"; the user agent is truncated to
// maxUserAgentLen runes.
func (r *Registry) Insert(fields InsertFields) domain.VoiceNote {
	effect := fields.Effect
	if effect == "" {
		effect = unknownValue
	}
	userAgent := fields.UserAgent
	if userAgent == "" {
		userAgent = unknownValue
	}
	if runes := []rune(userAgent); len(runes) > maxUserAgentLen {
		userAgent = string(runes[:maxUserAgentLen])
	}
	createdAt := fields.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	note := &domain.VoiceNote{
		ID:        r.nextID,
		RemoteURL: fields.RemoteURL,
		RemoteID:  fields.RemoteID,
		Effect:    effect,
		CreatedAt: createdAt,
		UserAgent: userAgent,
		FileSize:  fields.FileSize,
	}
	r.nextID++
	r.notes = append(r.notes, note)

	return *note
}

// List returns a snapshot of all records, most recent first. The returned
// slice holds copies, so later mutations never leak into it.
func (r *Registry) List() []domain.VoiceNote {
	r.mu.Lock()
	out := make([]domain.VoiceNote, 0, len(r.notes))
	for _, note := range r.notes {
		out = append(out, *note)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len returns the current number of records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

// FindByID returns a copy of the record with the given id.
func (r *Registry) FindByID(id int) (domain.VoiceNote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, note := range r.notes {
		if note.ID == id {
			return *note, true
		}
	}
	return domain.VoiceNote{}, false
}

// MarkDownloaded flags the record as downloaded and bumps its counter.
// Downloaded stays true on repeat calls while the counter keeps climbing;
// that asymmetry is deliberate.
func (r *Registry) MarkDownloaded(id int) (domain.VoiceNote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, note := range r.notes {
		if note.ID == id {
			note.Downloaded = true
			note.DownloadCount++
			return *note, true
		}
	}
	return domain.VoiceNote{}, false
}

// Remove deletes the record and returns it, so the caller can still reach
// the remote object key after the record is gone from the collection.
func (r *Registry) Remove(id int) (domain.VoiceNote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, note := range r.notes {
		if note.ID == id {
			removed := *note
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return removed, true
		}
	}
	return domain.VoiceNote{}, false
}
