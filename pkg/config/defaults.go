package config

import (
	"strings"
	"time"

	"github.com/marmos91/veilfs/internal/bytesize"
)

// ApplyDefaults fills in any unspecified configuration fields with
// sensible defaults. Called after loading from file and environment.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyStorageDefaults(&cfg.Storage)
	applyCoreDefaults(&cfg.Core)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyStorageDefaults fills in per-type storage defaults. Type itself
// has no default: the caller must choose an adapter.
func applyStorageDefaults(cfg *StorageConfig) {
	switch cfg.Type {
	case "fs":
		if cfg.FS == nil {
			cfg.FS = &FSStorageConfig{}
		}
		if cfg.FS.BasePath == "" {
			cfg.FS.BasePath = "/var/lib/veilfs/data"
		}
		cfg.FS.CreateDir = true
		if cfg.FS.DirMode == 0 {
			cfg.FS.DirMode = 0o755
		}
		if cfg.FS.FileMode == 0 {
			cfg.FS.FileMode = 0o644
		}
	case "s3":
		if cfg.S3 == nil {
			cfg.S3 = &S3StorageConfig{}
		}
	}
}

func applyCoreDefaults(cfg *CoreConfig) {
	if cfg.DerivationKeyEnv == "" {
		cfg.DerivationKeyEnv = "VEILFS_DERIVATION_KEY"
	}
	if cfg.TargetMinChunkSize == 0 {
		cfg.TargetMinChunkSize = bytesize.ByteSize(256 * bytesize.KiB)
	}
	if cfg.TargetMaxChunkSize == 0 {
		cfg.TargetMaxChunkSize = bytesize.ByteSize(bytesize.MiB)
	}
}

// GetDefaultConfig returns a Config with all default values applied,
// suitable for `veilfsctl config schema` and for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			Type: "fs",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
