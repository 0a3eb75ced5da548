package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageConfigured(t *testing.T) {
	full := StorageConfig{
		Endpoint:  "storage.example.com:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "voice-notes",
	}
	assert.True(t, full.Configured())

	cases := map[string]StorageConfig{
		"no endpoint":   {AccessKey: "key", SecretKey: "secret", Bucket: "b"},
		"no access key": {Endpoint: "e", SecretKey: "secret", Bucket: "b"},
		"no secret key": {Endpoint: "e", AccessKey: "key", Bucket: "b"},
		"no bucket":     {Endpoint: "e", AccessKey: "key", SecretKey: "secret"},
	}
	for name, cfg := range cases {
		assert.False(t, cfg.Configured(), name)
	}
}
