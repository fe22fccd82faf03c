package util

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPNG encodes a small image into a temp file and returns its path.
func writeTestPNG(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return path
}

// TestLoadImageFile decodes a small PNG round-tripped through disk.
func TestLoadImageFile(t *testing.T) {
	path := writeTestPNG(t, "sample.png")

	img, err := LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

// TestLoadImageFileMissing reports a not found error for a bad path.
func TestLoadImageFileMissing(t *testing.T) {
	img, err := LoadImageFile(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
	assert.Nil(t, img)
}

// TestLoadImageFileBadData rejects a file that is not a decodable image.
func TestLoadImageFileBadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	img, err := LoadImageFile(path)
	assert.Error(t, err)
	assert.Nil(t, img)
}

// TestValidateImagePath covers the extension allow list.
func TestValidateImagePath(t *testing.T) {
	assert.NoError(t, ValidateImagePath(writeTestPNG(t, "ok.png")))
	assert.NoError(t, ValidateImagePath(writeTestPNG(t, "ok.PNG")))

	// Extension check runs after the existence check, so the file must exist.
	bad := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("text"), 0o644))
	err := ValidateImagePath(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".txt")
}
