package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/kraftgate/internal/adapters/outbound/config"
)

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	out, err := run(t, "init", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created .kraftgate.yaml")

	data, err := os.ReadFile(filepath.Join(tmpDir, ".kraftgate.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "preset: standard")
	assert.Contains(t, string(data), "ramp_days: 28")
}

func TestInitCmd_PresetIsLoadable(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := run(t, "init", tmpDir, "--preset", "strict")
	require.NoError(t, err)

	cfg, err := config.New().Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Policy.Preset)
}

func TestInitCmd_UnknownPreset(t *testing.T) {
	_, err := run(t, "init", t.TempDir(), "--preset", "custom")
	require.Error(t, err)
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := run(t, "init", tmpDir)
	require.NoError(t, err)

	_, err = run(t, "init", tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "init", tmpDir, "--force")
	require.NoError(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kraftgate dev")
}
