package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the YAML written by `veilfsctl init`. It follows
// GetDefaultConfig's values except that it lists three profiling profile
// types where the defaults carry six, and its fs base_path points into the
// config file's own directory. It is hand-laid-out with comments so a fresh
// install gives an operator something readable to edit, not an
// auto-marshaled blob.
const defaultConfigTemplate = `# veilfs Configuration File
#
# Configuration precedence: environment variables (VEILFS_*) override this
# file, which overrides the built-in defaults.

logging:
  level: "INFO"       # DEBUG, INFO, WARN, ERROR
  format: "text"      # text, json
  output: "stdout"    # stdout, stderr, or a file path

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"
    profile_types:
      - cpu
      - alloc_objects
      - alloc_space

metrics:
  enabled: false
  port: 9090

shutdown_timeout: 30s

storage:
  type: "fs"          # fs, s3, memory
  fs:
    base_path: "%s"
    create_dir: true
    dir_mode: 0755
    file_mode: 0644

core:
  # Name of the environment variable holding the base64-encoded derivation
  # key. The key itself is never written to this file.
  derivation_key_env: "VEILFS_DERIVATION_KEY"
  target_min_chunk_size: "256Ki"
  target_max_chunk_size: "1Mi"
  plain_text_mode: false
  allow_plain_text_mode: false
`

// InitConfig writes a default configuration file to the default location,
// returning the path written. It refuses to overwrite an existing file
// unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to path, creating
// parent directories as needed. It refuses to overwrite an existing file
// unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	basePath := filepath.Join(filepath.Dir(path), "data")
	content := fmt.Sprintf(defaultConfigTemplate, filepath.ToSlash(basePath))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
