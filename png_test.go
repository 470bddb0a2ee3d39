package atlaspack

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"ui-icons", "ui-icons"},
		{"frame.01", "frame.01"},
		{"snake_case", "snake_case"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "atlas"},
		{"   ", "atlas"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPageFileName(t *testing.T) {
	if got := PageFileName("ui", 2); got != "ui-2.png" {
		t.Errorf("PageFileName(ui, 2) = %q, want ui-2.png", got)
	}
	if got := PageFileName("my sheet", 0); got != "my_sheet-0.png" {
		t.Errorf("PageFileName(my sheet, 0) = %q, want my_sheet-0.png", got)
	}
}

func TestSheet_WritePages(t *testing.T) {
	opts := testBuildOptions()
	opts.MaxWidth, opts.MaxHeight = 64, 64
	sheet, err := Build(testSprites(), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := sheet.WritePages(dir, "ui")
	if err != nil {
		t.Fatalf("WritePages: %v", err)
	}
	if len(paths) != len(sheet.Pages) {
		t.Fatalf("wrote %d pages, want %d", len(paths), len(sheet.Pages))
	}
	for i, path := range paths {
		if filepath.Base(path) != PageFileName("ui", i) {
			t.Errorf("page %d path = %q", i, path)
		}
		sp, err := LoadSprite("page", path)
		if err != nil {
			t.Fatalf("LoadSprite(%s): %v", path, err)
		}
		want := sheet.Pages[i].Bounds()
		if got := sp.Image.Bounds(); got.Dx() != want.Dx() || got.Dy() != want.Dy() {
			t.Errorf("page %d decoded %v, want %v", i, got, want)
		}
	}
}

func TestSheet_WritePages_BadDir(t *testing.T) {
	sheet, err := Build(testSprites(), testBuildOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := sheet.WritePages(filepath.Join(file, "sub"), "ui"); err == nil {
		t.Error("WritePages under a regular file succeeded, want error")
	}
}
