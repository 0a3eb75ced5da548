package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundpost/voicedrop/internal/api"
	"github.com/soundpost/voicedrop/internal/registry"
	"github.com/soundpost/voicedrop/internal/service"
	"github.com/soundpost/voicedrop/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	uploadErr error
	deleteErr error
}

func (f *fakeStore) Upload(_ context.Context, key string, _ []byte, _ string) (storage.StoredObject, error) {
	if f.uploadErr != nil {
		return storage.StoredObject{}, f.uploadErr
	}
	return storage.StoredObject{URL: "https://cdn.example.com/" + key, Key: key}, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error {
	return f.deleteErr
}

func newTestRouter(store storage.ObjectStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := registry.New()
	svc := service.NewVoiceNoteService(reg, store, "voice-notes")
	return api.NewRouter(svc, []string{"*"}, 10<<20)
}

// uploadRequest builds a multipart POST with an audio part and optional fields.
func uploadRequest(t *testing.T, payload []byte, contentType string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="audio"; filename="note.webm"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-voice", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func doJSON(t *testing.T, router *gin.Engine, req *http.Request) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec.Code, decoded
}

func TestUploadMissingFile(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/upload-voice", nil)
	code, body := doJSON(t, router, req)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No audio file provided", body["error"])
}

func TestUploadRejectsNonAudio(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := uploadRequest(t, []byte("not audio"), "text/plain", nil)
	code, body := doJSON(t, router, req)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "File must be an audio recording", body["error"])
}

func TestUploadEmptyPayload(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	req := uploadRequest(t, nil, "audio/webm", nil)
	code, body := doJSON(t, router, req)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No audio file provided", body["error"])
}

func TestUploadRemoteFailure(t *testing.T) {
	router := newTestRouter(&fakeStore{uploadErr: fmt.Errorf("bucket unreachable")})

	req := uploadRequest(t, []byte("audio data"), "audio/webm", nil)
	code, body := doJSON(t, router, req)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to upload voice note", body["error"])
	assert.Contains(t, body["details"], "bucket unreachable")

	// No record may exist after a failed upload.
	code, body = doJSON(t, router, httptest.NewRequest(http.MethodGet, "/api/admin/voice-notes", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
}

func TestMarkDownloadedUnknownID(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	code, body := doJSON(t, router, httptest.NewRequest(http.MethodPost, "/api/admin/voice-notes/42/downloaded", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Voice note not found", body["error"])
}

func TestNonNumericIDIsNotFound(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	code, _ := doJSON(t, router, httptest.NewRequest(http.MethodPost, "/api/admin/voice-notes/abc/downloaded", nil))
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, router, httptest.NewRequest(http.MethodDelete, "/api/admin/voice-notes/abc", nil))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteRemoteFailureKeepsNote(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store)

	req := uploadRequest(t, []byte("audio data"), "audio/webm", nil)
	code, body := doJSON(t, router, req)
	require.Equal(t, http.StatusOK, code)
	id := int(body["id"].(float64))

	store.deleteErr = errors.New("remote refused")
	code, body = doJSON(t, router, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/voice-notes/%d", id), nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to delete voice note", body["error"])

	code, body = doJSON(t, router, httptest.NewRequest(http.MethodGet, "/api/admin/voice-notes", nil))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	code, body := doJSON(t, router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.EqualValues(t, 0, body["totalNotes"])
}

// TestUploadLifecycle walks the full path: upload, list, mark downloaded
// twice, delete, list empty.
func TestUploadLifecycle(t *testing.T) {
	router := newTestRouter(&fakeStore{})

	// Upload with an effect and a long user agent.
	longAgent := make([]byte, 150)
	for i := range longAgent {
		longAgent[i] = 'x'
	}
	req := uploadRequest(t, []byte("audio data"), "audio/webm", map[string]string{
		"effect":    "echo",
		"userAgent": string(longAgent),
	})
	code, body := doJSON(t, router, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Voice note uploaded successfully", body["message"])
	assert.EqualValues(t, 1, body["id"])
	url := body["url"].(string)
	assert.Contains(t, url, "https://cdn.example.com/voice-notes/")

	// List shows the fresh note with defaults and the truncated agent.
	code, body = doJSON(t, router, httptest.NewRequest(http.MethodGet, "/api/admin/voice-notes", nil))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
	notes := body["notes"].([]any)
	require.Len(t, notes, 1)
	note := notes[0].(map[string]any)
	assert.EqualValues(t, 1, note["id"])
	assert.Equal(t, "echo", note["effect"])
	assert.Equal(t, url, note["cloudinaryUrl"])
	assert.EqualValues(t, 10, note["fileSize"])
	assert.Nil(t, note["duration"])
	assert.Equal(t, false, note["downloaded"])
	assert.EqualValues(t, 0, note["downloadCount"])
	assert.Len(t, note["userAgent"], 100)

	// Mark downloaded twice: flag saturates, counter keeps climbing.
	for i := 1; i <= 2; i++ {
		code, body = doJSON(t, router, httptest.NewRequest(http.MethodPost, "/api/admin/voice-notes/1/downloaded", nil))
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Marked as downloaded", body["message"])
		updated := body["note"].(map[string]any)
		assert.Equal(t, true, updated["downloaded"])
		assert.EqualValues(t, i, updated["downloadCount"])
	}

	// Delete succeeds and the list goes empty.
	code, body = doJSON(t, router, httptest.NewRequest(http.MethodDelete, "/api/admin/voice-notes/1", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Voice note deleted successfully", body["message"])

	code, body = doJSON(t, router, httptest.NewRequest(http.MethodGet, "/api/admin/voice-notes", nil))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
}
