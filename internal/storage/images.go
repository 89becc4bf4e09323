package storage

import (
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned when an uploaded file is not a
// recognized image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// NewImageKey derives a fresh object key for an uploaded car image,
// preserving the original extension. The original filename is otherwise
// discarded so uploads cannot collide or traverse paths.
func NewImageKey(originalName string) (key, contentType string, err error) {
	ext := strings.ToLower(path.Ext(originalName))
	ct, ok := imageContentTypes[ext]
	if !ok {
		return "", "", ErrUnsupportedImage
	}
	return "cars/" + uuid.NewString() + ext, ct, nil
}

// ImageContentType resolves the content type for a stored image key,
// falling back to a generic binary type.
func ImageContentType(key string) string {
	if ct, ok := imageContentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}
