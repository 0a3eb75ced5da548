package service

import "errors"

// Failure taxonomy for the ingestion pipeline and admin operations. Callers
// classify with errors.Is; the wrapped cause carries the storage details.
var (
	// ErrEmptyPayload rejects a submission with no audio bytes.
	ErrEmptyPayload = errors.New("empty audio payload")

	// ErrNotFound means the referenced voice note does not exist.
	ErrNotFound = errors.New("voice note not found")

	// ErrUploadFailed means the remote store rejected or could not complete
	// the transfer; no record was created.
	ErrUploadFailed = errors.New("upload to remote storage failed")

	// ErrDeleteFailed means the remote object could not be deleted; the
	// record is intentionally kept so an operator can retry.
	ErrDeleteFailed = errors.New("remote object deletion failed")

	// ErrStorageUnconfigured means the process started without storage
	// credentials; submissions fail until they are provided.
	ErrStorageUnconfigured = errors.New("object storage is not configured")
)
