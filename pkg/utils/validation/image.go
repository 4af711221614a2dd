package validation

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrFileSize     = errors.New("file size exceeds limit of 10MB")
	ErrFileType     = errors.New("only image files are allowed")
	ErrFileRequired = errors.New("no file provided")
	ErrTooManyFiles = errors.New("a maximum of 5 images can be uploaded at once")
)

const (
	MaxImageSize = 10 * 1024 * 1024 // 10MB
	MaxImages    = 5
)

var AllowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func ValidateImage(file *multipart.FileHeader) error {
	if file == nil || file.Size == 0 {
		return ErrFileRequired
	}

	if file.Size > MaxImageSize {
		return ErrFileSize
	}

	if !strings.HasPrefix(strings.ToLower(file.Header.Get("Content-Type")), "image/") {
		return ErrFileType
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !AllowedImageExtensions[ext] {
		return ErrFileType
	}

	return nil
}

// ValidateImages checks the count and then every file.
func ValidateImages(files []*multipart.FileHeader) error {
	if len(files) > MaxImages {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if err := ValidateImage(f); err != nil {
			return err
		}
	}
	return nil
}
