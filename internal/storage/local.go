package storage

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

type localStore struct {
	fs  afero.Fs
	dir string
}

// NewLocalStore creates an artifact store rooted at dir on fsys
func NewLocalStore(fsys afero.Fs, dir string) (ArtifactStore, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, &IOFailure{Op: "mkdir", Key: dir, Err: err}
	}
	return &localStore{fs: fsys, dir: dir}, nil
}

func (s *localStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

func (s *localStore) Put(_ context.Context, key, contentType string, body []byte) error {
	if err := validateContentType(contentType); err != nil {
		return err
	}
	p := s.path(key)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &IOFailure{Op: "put", Key: key, Err: err}
	}
	if err := afero.WriteFile(s.fs, p, body, 0o644); err != nil {
		return &IOFailure{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (s *localStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(ErrNotFound, err)
		}
		return nil, &IOFailure{Op: "get", Key: key, Err: err}
	}
	return data, nil
}

// URL returns a file URL; the store has no server in front of it
func (s *localStore) URL(_ context.Context, key string) (string, error) {
	p := s.path(key)
	if ok, err := afero.Exists(s.fs, p); err != nil || !ok {
		return "", &IOFailure{Op: "url", Key: key, Err: ErrNotFound}
	}
	return "file://" + filepath.ToSlash(p), nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	if err := s.fs.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOFailure{Op: "delete", Key: key, Err: err}
	}
	return nil
}
