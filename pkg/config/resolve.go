package config

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/marmos91/veilfs/pkg/evfs"
	"github.com/marmos91/veilfs/pkg/evfs/crypto"
	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/storage/fsadapter"
	"github.com/marmos91/veilfs/pkg/evfs/storage/memadapter"
	"github.com/marmos91/veilfs/pkg/evfs/storage/s3adapter"
)

// ToEvfsConfig translates CoreConfig into the evfs.Config expected by
// evfs.Init.
func (c CoreConfig) ToEvfsConfig() (evfs.Config, error) {
	cfg := evfs.Config{
		TargetMinChunkSize: c.TargetMinChunkSize.Uint64(),
		TargetMaxChunkSize: c.TargetMaxChunkSize.Uint64(),
		PlainTextMode:      c.PlainTextMode,
		AllowPlainTextMode: c.AllowPlainTextMode,
		CompressMetadata:   c.CompressMetadata,
	}

	if c.CryptLabel != "" {
		label, err := parseLabel(c.CryptLabel)
		if err != nil {
			return evfs.Config{}, fmt.Errorf("core.crypt_label: %w", err)
		}
		cfg.CryptLabel = label
	}
	if c.HMACLabel != "" {
		label, err := parseLabel(c.HMACLabel)
		if err != nil {
			return evfs.Config{}, fmt.Errorf("core.hmac_label: %w", err)
		}
		cfg.HMACLabel = label
	}

	return cfg, nil
}

func parseLabel(hexStr string) (crypto.Label, error) {
	var label crypto.Label
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return label, fmt.Errorf("not valid hex: %w", err)
	}
	if len(decoded) != len(label) {
		return label, fmt.Errorf("must decode to %d bytes, got %d", len(label), len(decoded))
	}
	copy(label[:], decoded)
	return label, nil
}

// ResolveDerivationKey reads the base64-encoded derivation key named by
// Core.DerivationKeyEnv out of the environment. The key never lands in
// the config file itself.
func (c CoreConfig) ResolveDerivationKey() ([]byte, error) {
	raw := os.Getenv(c.DerivationKeyEnv)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", c.DerivationKeyEnv)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", c.DerivationKeyEnv, err)
	}
	return key, nil
}

// NewAdapter constructs the storage.Adapter selected by cfg.
func (cfg StorageConfig) NewAdapter(ctx context.Context) (storage.Adapter, error) {
	switch cfg.Type {
	case "memory":
		return memadapter.New(), nil
	case "fs":
		if cfg.FS == nil {
			return nil, fmt.Errorf("storage.fs is required when storage.type is \"fs\"")
		}
		return fsadapter.New(fsadapter.Config{
			BasePath:  cfg.FS.BasePath,
			CreateDir: cfg.FS.CreateDir,
			DirMode:   cfg.FS.DirMode,
			FileMode:  cfg.FS.FileMode,
		})
	case "s3":
		if cfg.S3 == nil {
			return nil, fmt.Errorf("storage.s3 is required when storage.type is \"s3\"")
		}
		return s3adapter.NewFromConfig(ctx, s3adapter.Config{
			Bucket:         cfg.S3.Bucket,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			KeyPrefix:      cfg.S3.KeyPrefix,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
