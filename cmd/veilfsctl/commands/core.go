package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/veilfs/internal/logger"
	"github.com/marmos91/veilfs/pkg/config"
	"github.com/marmos91/veilfs/pkg/evfs"
	"github.com/marmos91/veilfs/pkg/metrics"
)

// loadConfig loads and validates configuration from the shared --config
// flag, pointing the caller at `veilfsctl init` when nothing is found.
func loadConfig() (*config.Config, error) {
	return config.MustLoad(configPath)
}

// openCore loads configuration, constructs the selected storage adapter,
// resolves the derivation key from its environment variable, and opens a
// Core against it. Every data-path subcommand (ls, mkdir, put, get, mv,
// cp, rm, rmdir, clear) calls this once per invocation; there is no
// long-lived daemon process behind the CLI, only `serve`.
func openCore(ctx context.Context) (*evfs.Core, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	adapter, err := cfg.Storage.NewAdapter(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to construct storage adapter: %w", err)
	}

	key, err := cfg.Core.ResolveDerivationKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve derivation key: %w", err)
	}

	evfsCfg, err := cfg.Core.ToEvfsConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid core configuration: %w", err)
	}

	core, err := evfs.InitWithMetrics(ctx, adapter, key, evfsCfg, metrics.NewLockMetrics())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open core: %w", err)
	}

	return core, cfg, nil
}
