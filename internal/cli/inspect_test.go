package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectAtlas(t *testing.T) {
	src := spriteDir(t)
	out := t.TempDir()
	_, err := execute(t, "pack", src, "-o", out, "-n", "ui", "--padding", "0")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "ui.json"))
	require.NoError(t, err)
	sum, err := inspectAtlas(data, out)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.regions)
	assert.Zero(t, sum.orphaned)
	require.Len(t, sum.pages, 1)
	p := sum.pages[0]
	assert.Equal(t, "ui-0.png", p.image)
	assert.Equal(t, 3, p.regions)
	assert.Equal(t, 64*64+48*16+16*16, p.coveredArea)
	assert.Positive(t, p.width)
}

func TestInspectAtlas_HashFormatReadsImageHeader(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "sheet.png", 40, 20)
	data := []byte(`{
		"frames": {
			"a": {"frame": {"x": 0, "y": 0, "w": 10, "h": 10}, "rotated": false, "trimmed": true,
				"spriteSourceSize": {"x": 1, "y": 1, "w": 10, "h": 10}, "sourceSize": {"w": 12, "h": 12}}
		},
		"meta": {"image": "sheet.png"}
	}`)

	sum, err := inspectAtlas(data, dir)
	require.NoError(t, err)
	require.Len(t, sum.pages, 1)
	assert.Equal(t, 40, sum.pages[0].width)
	assert.Equal(t, 20, sum.pages[0].height)
	assert.Equal(t, 1, sum.pages[0].trimmedCount)
}

func TestInspectCommand(t *testing.T) {
	src := spriteDir(t)
	out := t.TempDir()
	_, err := execute(t, "pack", src, "-o", out, "-n", "ui")
	require.NoError(t, err)

	stdout, err := execute(t, "inspect", filepath.Join(out, "ui.json"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "page 0")
	assert.Contains(t, stdout, "ui-0.png")
	assert.Contains(t, stdout, "3 (0 trimmed)")
}

func TestInspectCommand_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := execute(t, "inspect", path)
	assert.Error(t, err)
}
