package atlaspack

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// PageFileName returns the file name used for page i of a sheet written with
// the given base name, e.g. "ui-0.png".
func PageFileName(base string, i int) string {
	return fmt.Sprintf("%s-%d.png", sanitizeLabel(base), i)
}

// WritePages encodes every page as PNG into dir and returns the written
// paths in page order. dir is created if needed.
func (s *Sheet) WritePages(dir, base string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("atlaspack: mkdir %s: %w", dir, err)
	}
	paths := make([]string, len(s.Pages))
	for i, page := range s.Pages {
		path := filepath.Join(dir, PageFileName(base, i))
		if err := writePNG(path, page); err != nil {
			return nil, fmt.Errorf("atlaspack: %w", err)
		}
		paths[i] = path
	}
	return paths, nil
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "atlas" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "atlas"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
