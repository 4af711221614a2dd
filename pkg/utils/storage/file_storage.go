package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"realty_backend/pkg/media"
)

// LocalStore keeps listing photos on disk for development. Files under dir are
// served by the HTTP server at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ media.Store = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create media dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Upload(ctx context.Context, folder string, file media.File) (media.Object, error) {
	if len(file.Data) == 0 {
		return media.Object{}, media.ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return media.Object{}, err
	}

	key := media.ObjectKey(folder, file.Filename, time.Now())
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return media.Object{}, fmt.Errorf("could not create folder: %w", err)
	}
	if err := os.WriteFile(target, file.Data, 0o644); err != nil {
		return media.Object{}, fmt.Errorf("could not write file: %w", err)
	}

	return media.Object{URL: s.baseURL + "/" + key, ExternalID: key}, nil
}

// Delete removes a previously uploaded file. Keys that point outside the
// media dir are rejected.
func (s *LocalStore) Delete(ctx context.Context, externalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := path.Clean("/" + externalID)[1:]
	if key == "" || key != externalID {
		return fmt.Errorf("invalid media key %q", externalID)
	}

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
