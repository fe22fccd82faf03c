package util

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// supportedImageExtensions lists the formats the loader will decode.
var supportedImageExtensions = []string{".jpg", ".jpeg", ".png"}

// LoadImageFile reads and decodes a single image from disk.
//
// Arguments:
//   - path: Path to the image file.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the file is missing, has an unsupported extension,
//     or fails to decode.
func LoadImageFile(path string) (image.Image, error) {
	if err := ValidateImagePath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening image %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding image %s", path)
	}
	return img, nil
}

// ValidateImagePath checks that the file exists and has a supported
// extension.
func ValidateImagePath(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Errorf("file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range supportedImageExtensions {
		if ext == supported {
			return nil
		}
	}
	return errors.Errorf("unsupported file extension: %s (supported: %v)", ext, supportedImageExtensions)
}
