package storage

import "context"

// StoredObject describes a successfully stored remote object.
type StoredObject struct {
	// URL is the publicly resolvable location of the object.
	URL string
	// Key addresses the object in the remote store for later deletion.
	Key string
}

// ObjectStorage captures the narrow remote-store contract the pipeline needs:
// put bytes under a caller-chosen key, delete by key. Timeouts on the network
// calls are owned by the implementation.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error)
	Delete(ctx context.Context, key string) error
}
