package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
)

const (
	Quality     = 85
	ContentType = "image/webp"
)

// Process decodes a JPEG, PNG, GIF or WebP image and re-encodes it as lossy
// WebP.
func Process(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: Quality}); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// WebPName swaps the extension of filename for .webp.
func WebPName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".webp"
}
