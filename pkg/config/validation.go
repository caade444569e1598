package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags and the cross-field rules
// that `validate` tags alone cannot express (which Storage sub-config
// must be present for the chosen Type).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w", err)
	}
	return validateStorage(cfg.Storage)
}

func validateStorage(cfg StorageConfig) error {
	switch cfg.Type {
	case "fs":
		if cfg.FS == nil || cfg.FS.BasePath == "" {
			return fmt.Errorf("storage.fs.base_path is required when storage.type is \"fs\"")
		}
	case "s3":
		if cfg.S3 == nil || cfg.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when storage.type is \"s3\"")
		}
	case "memory":
		// no sub-config required
	}
	return nil
}
