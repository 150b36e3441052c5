package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const DefaultMaxBytes = int64(5 * 1024 * 1024)

var ErrNotAnImage = errors.New("media: not a supported image")

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Image struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
}

// ValidateImage reads an upload, enforces the size cap and the
// extension/mime allow-list, and confirms the payload actually decodes as
// an image. The declared content type is ignored when the file name says
// otherwise; bytes are what they are.
func ValidateImage(upload Upload, maxBytes int64) (*Image, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if upload.Size > maxBytes {
		return nil, fmt.Errorf("media: image exceeds %d bytes", maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("media: image exceeds %d bytes", maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	contentType := normalizeContentType(upload.ContentType, upload.FileName)
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrNotAnImage, cfg.Width, cfg.Height)
	}

	return &Image{
		Bytes:       data,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

func normalizeContentType(value, fileName string) string {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	ct := strings.ToLower(strings.TrimSpace(value))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	if ct != "" {
		return ct
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return ""
}
