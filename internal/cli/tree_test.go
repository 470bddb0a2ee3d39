package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeCommand_DOT(t *testing.T) {
	src := spriteDir(t)

	stdout, err := execute(t, "tree", src, "--format", "dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "digraph layout {"))
	assert.Equal(t, 3, strings.Count(stdout, "fillcolor=lightblue"), "one occupied leaf per sprite")
}

func TestTreeCommand_OutputFile(t *testing.T) {
	src := spriteDir(t)
	path := filepath.Join(t.TempDir(), "tree.dot")

	stdout, err := execute(t, "tree", src, "-f", "dot", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "n0")
}

func TestTreeCommand_Errors(t *testing.T) {
	src := spriteDir(t)

	_, err := execute(t, "tree", src, "--format", "png")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "tree", src, "--format", "dot", "--page", "5")
	assert.ErrorContains(t, err, "out of range")
}
