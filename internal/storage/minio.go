package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for an S3-compatible store.
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	Timeout       time.Duration
}

// MinioClient implements ObjectStorage for MinIO / S3-compatible services.
type MinioClient struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	timeout       time.Duration
}

// NewMinioClient builds a new MinioClient for the given config.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	// The minio client wants a bare host; a scheme on the endpoint decides SSL.
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if strings.HasPrefix(endpoint, "https://") {
		endpoint = strings.TrimPrefix(endpoint, "https://")
		useSSL = true
	} else if strings.HasPrefix(endpoint, "http://") {
		endpoint = strings.TrimPrefix(endpoint, "http://")
		useSSL = false
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed creating storage client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MinioClient{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		timeout:       timeout,
	}, nil
}

// Upload stores data under key with the given content type.
func (c *MinioClient) Upload(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("storage put %s failed: %w", key, err)
	}

	return StoredObject{URL: c.objectURL(key), Key: key}, nil
}

// Delete removes the object addressed by key.
func (c *MinioClient) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage delete %s failed: %w", key, err)
	}
	return nil
}

func (c *MinioClient) objectURL(key string) string {
	if c.publicBaseURL != "" {
		return c.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", c.client.EndpointURL(), c.bucket, key)
}

var _ ObjectStorage = (*MinioClient)(nil)
