package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/source"
)

func TestReader_ReadLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"),
		[]byte("package pkg\n\n// kraftgate-ignore\nfunc bad() {}\n"), 0644))

	got, err := source.New().ReadLines(dir, []string{"pkg/a.go", "missing.go", "../escape.go"})
	require.NoError(t, err)

	require.Contains(t, got, "pkg/a.go")
	assert.Equal(t, []string{"package pkg", "", "// kraftgate-ignore", "func bad() {}"}, got["pkg/a.go"])
	assert.NotContains(t, got, "missing.go")
	assert.NotContains(t, got, "../escape.go")
}

func TestReader_Empty(t *testing.T) {
	got, err := source.New().ReadLines(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
