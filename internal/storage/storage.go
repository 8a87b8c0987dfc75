package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/RMahshie/sparamgen/internal/config"
)

// Content types accepted for artifacts
const (
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
	ContentTypeJSON = "application/json"
)

// ErrNotFound is wrapped by IOFailure when a key does not exist
var ErrNotFound = errors.New("artifact not found")

// IOFailure is a failed storage operation
type IOFailure struct {
	Op  string
	Key string
	Err error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *IOFailure) Unwrap() error { return e.Err }

// ArtifactStore persists generated files: spec texts, s-parameter tables and plots
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Key builds the artifact key of a file belonging to a filter
func Key(filterID, name string) string {
	return path.Join("filters", filterID, name)
}

func validateContentType(contentType string) error {
	switch contentType {
	case ContentTypeText, ContentTypeHTML, ContentTypeJSON:
		return nil
	}
	return fmt.Errorf("invalid content type: %s. Supported types: %s, %s, %s",
		contentType, ContentTypeText, ContentTypeHTML, ContentTypeJSON)
}

// FromConfig opens the artifact store selected by STORAGE_BACKEND
func FromConfig(ctx context.Context, cfg *config.Config, fsys afero.Fs) (ArtifactStore, error) {
	if cfg.Storage.Backend == "local" {
		return NewLocalStore(fsys, cfg.Storage.Dir)
	}
	return NewS3Store(ctx, S3Config{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	})
}
