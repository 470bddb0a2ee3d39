package atlaspack

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SupportedExtensions lists the file extensions DecodeSprite understands.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// DecodeSprite decodes an image from r and names it name.
func DecodeSprite(name string, r io.Reader) (Sprite, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return Sprite{}, fmt.Errorf("atlaspack: decode %s: %w", name, err)
	}
	Logger().Debug("atlaspack: decoded sprite", "name", name, "format", format,
		"size", sizeString(img.Bounds().Dx(), img.Bounds().Dy()))
	return Sprite{Name: name, Image: img}, nil
}

// LoadSprite opens and decodes the image file at path.
func LoadSprite(name, path string) (Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sprite{}, fmt.Errorf("atlaspack: %w", err)
	}
	defer f.Close()
	return DecodeSprite(name, f)
}
