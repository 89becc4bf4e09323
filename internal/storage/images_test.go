package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageKey(t *testing.T) {
	key, contentType, err := NewImageKey("My Photo.JPG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "cars/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "image/jpeg", contentType)

	// Fresh keys never collide with the original filename.
	other, _, err := NewImageKey("My Photo.JPG")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestNewImageKeyRejectsUnknownExtensions(t *testing.T) {
	for _, name := range []string{"car.exe", "car", "car.pdf", ""} {
		_, _, err := NewImageKey(name)
		assert.ErrorIs(t, err, ErrUnsupportedImage, "name %q", name)
	}
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/png", ImageContentType("cars/abc.png"))
	assert.Equal(t, "image/webp", ImageContentType("cars/abc.WEBP"))
	assert.Equal(t, "application/octet-stream", ImageContentType("cars/abc"))
}
