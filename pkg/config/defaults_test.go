package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Equal(t, "http://localhost:4040", cfg.Telemetry.Profiling.Endpoint)
	assert.Contains(t, cfg.Telemetry.Profiling.ProfileTypes, "cpu")
}

func TestApplyDefaults_Core(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "VEILFS_DERIVATION_KEY", cfg.Core.DerivationKeyEnv)
	assert.Equal(t, uint64(256*1024), cfg.Core.TargetMinChunkSize.Uint64())
	assert.Equal(t, uint64(1024*1024), cfg.Core.TargetMaxChunkSize.Uint64())
}

func TestApplyDefaults_Storage_FS(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Type: "fs"}}
	ApplyDefaults(cfg)

	require.NotNil(t, cfg.Storage.FS)
	assert.NotEmpty(t, cfg.Storage.FS.BasePath)
	assert.True(t, cfg.Storage.FS.CreateDir)
	assert.Equal(t, uint32(0o755), uint32(cfg.Storage.FS.DirMode))
	assert.Equal(t, uint32(0o644), uint32(cfg.Storage.FS.FileMode))
}

func TestApplyDefaults_Storage_S3(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Type: "s3"}}
	ApplyDefaults(cfg)

	require.NotNil(t, cfg.Storage.S3)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/veilfs.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Storage: StorageConfig{
			Type: "fs",
			FS:   &FSStorageConfig{BasePath: "/data/veilfs"},
		},
	}

	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/veilfs.log", cfg.Logging.Output)
	assert.Equal(t, 60*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/veilfs", cfg.Storage.FS.BasePath)
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, Validate(cfg))
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.NotEmpty(t, cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Storage.Type)
	assert.NotEmpty(t, cfg.Core.DerivationKeyEnv)
	require.NotNil(t, cfg.Storage.FS)
	assert.NotEmpty(t, cfg.Storage.FS.BasePath)
}
