// Package media defines the object store contract used for listing photos.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// File is one processed image ready to upload.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Object identifies a stored file. ExternalID is what Delete expects.
type Object struct {
	URL        string
	ExternalID string
}

type Store interface {
	Upload(ctx context.Context, folder string, file File) (Object, error)
	Delete(ctx context.Context, externalID string) error
}

// ErrEmptyFile is returned by stores asked to persist zero bytes.
var ErrEmptyFile = errors.New("media: empty file")

// DeleteAll removes every object, logging failures instead of stopping.
// It returns the number of objects that could not be deleted.
func DeleteAll(ctx context.Context, store Store, log *zap.Logger, externalIDs []string) int {
	failed := 0
	for _, id := range externalIDs {
		if err := store.Delete(ctx, id); err != nil {
			failed++
			log.Warn("media delete failed", zap.String("external_id", id), zap.Error(err))
		}
	}
	return failed
}

// ObjectKey builds a URL-safe, collision-free key for a listing photo:
// listings/<folder-slug>/<unixnano>-<uuid><ext>.
func ObjectKey(folder, filename string, now time.Time) string {
	safeFolder := slug.Make(folder)
	if safeFolder == "" {
		safeFolder = "misc"
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".webp"
	}
	uniqueName := fmt.Sprintf("%d-%s%s", now.UnixNano(), uuid.New().String(), ext)
	return path.Join("listings", safeFolder, uniqueName)
}
