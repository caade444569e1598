package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"
  format: "text"
  output: "stdout"

storage:
  type: fs
  fs:
    base_path: "` + yamlSafePath(tmpDir) + `/data"

core:
  derivation_key_env: VEILFS_DERIVATION_KEY
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "fs", cfg.Storage.Type)
	require.NotNil(t, cfg.Storage.FS)
	assert.True(t, cfg.Storage.FS.CreateDir)
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config, so
	// commands can run without requiring `veilfsctl init` first.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "fs", cfg.Storage.Type)
	assert.Equal(t, "VEILFS_DERIVATION_KEY", cfg.Core.DerivationKeyEnv)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoad_MissingRequiredField(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// storage.type is required and absent entirely.
	configContent := `
logging:
  level: "INFO"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "fs", cfg.Storage.Type)
	assert.Equal(t, "VEILFS_DERIVATION_KEY", cfg.Core.DerivationKeyEnv)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "config.yaml", filepath.Base(path))
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	assert.Equal(t, "veilfs", filepath.Base(dir))
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("VEILFS_LOGGING_LEVEL", "ERROR")
	t.Setenv("VEILFS_STORAGE_TYPE", "memory")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

storage:
  type: fs
  fs:
    base_path: "` + yamlSafePath(tmpDir) + `/data"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Storage.Type)
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Storage.FS.BasePath = filepath.Join(tmpDir, "data")

	require.NoError(t, SaveConfig(cfg, configPath))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.FS.BasePath, loaded.Storage.FS.BasePath)
	assert.Equal(t, cfg.Core.TargetMinChunkSize, loaded.Core.TargetMinChunkSize)
}
