package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/abdidvp/kraftgate/internal/adapters/outbound/config"
	"github.com/abdidvp/kraftgate/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".kraftgate.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := appconfig.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
policy:
  preset: strict
  fail_on_warn: false
gates:
  timeout: 5s
  max_parallel: 2
progressive:
  enabled: true
exclude_paths:
  - "vendor/**"
`)

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.PresetStrict, cfg.Policy.Preset)
	require.NotNil(t, cfg.Policy.FailOnWarn)
	assert.False(t, *cfg.Policy.FailOnWarn)
	assert.Equal(t, 5*time.Second, cfg.Gates.Timeout)
	assert.Equal(t, 2, cfg.Gates.MaxParallel)
	assert.True(t, cfg.Progressive.Enabled)
	assert.Equal(t, 28, cfg.Progressive.RampDays, "unset fields take defaults")
	assert.Equal(t, []string{"vendor/**"}, cfg.ExcludePaths)
}

func TestYAMLLoader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .kraftgate.yaml")
}

func TestYAMLLoader_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "polcy:\n  preset: strict\n")

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
}

func TestYAMLLoader_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "policy:\n  preset: paranoid\n")

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .kraftgate.yaml")
	assert.Contains(t, err.Error(), "paranoid")
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := domain.DefaultConfig()
	cfg.Policy.Preset = domain.PresetLenient

	path, err := appconfig.Write(dir, cfg, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Policy preset")
	assert.Contains(t, string(data), "timeout: 30s")

	loaded, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := appconfig.Write(dir, domain.DefaultConfig(), false)
	require.NoError(t, err)

	_, err = appconfig.Write(dir, domain.DefaultConfig(), false)
	assert.Error(t, err)

	_, err = appconfig.Write(dir, domain.DefaultConfig(), true)
	assert.NoError(t, err)
}
