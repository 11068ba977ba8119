// Package objectstore keeps durable copies of generated images in a MinIO bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"TripIdeas/internal/config"
	"TripIdeas/internal/ports"
)

const maxObjectBytes = 15 << 20

// Store mirrors remote objects into one bucket.
type Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
	http       *http.Client
}

var _ ports.ObjectStore = (*Store)(nil)

// New builds a MinIO client. PublicURL is the externally reachable prefix of the
// bucket; it defaults to the endpoint URL followed by the bucket name.
func New(cfg config.MinioConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.Secure,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/") + "/" + cfg.BucketName
	}

	return &Store{
		client:     client,
		bucket:     cfg.BucketName,
		publicBase: base,
		http:       &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Mirror downloads sourceURL and stores it as objectName.
func (s *Store) Mirror(ctx context.Context, sourceURL, objectName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", sourceURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", sourceURL, err)
	}
	if len(data) > maxObjectBytes {
		return "", fmt.Errorf("object %s exceeds %d bytes", sourceURL, maxObjectBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || !strings.HasPrefix(mediaType, "image/") {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s/%s: %w", s.bucket, objectName, err)
	}
	return s.publicBase + "/" + objectName, nil
}
