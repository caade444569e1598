package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, Validate(cfg))
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidMetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = 70000 // out of range

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")
}

func TestValidate_MissingFSBasePath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.FS.BasePath = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "base_path")
}

func TestValidate_S3WithoutBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = "s3"
	cfg.Storage.S3 = &S3StorageConfig{}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "bucket")
}

func TestValidate_UnknownStorageType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = "nfs"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestValidate_TelemetrySampleRateOutOfRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.SampleRate = 1.5

	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidCryptLabel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Core.CryptLabel = "not-hex"

	assert.Error(t, Validate(cfg))
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		assert.NoError(t, Validate(cfg), "level %q should validate", level)
		assert.Equal(t, level, cfg.Logging.Level, "Validate must not mutate the level")
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "INFO", cfg.Logging.Level, "ApplyDefaults should normalize case")
}
