package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marmos91/veilfs/internal/logger"
	"github.com/marmos91/veilfs/internal/telemetry"
	"github.com/marmos91/veilfs/pkg/apiserver"
	"github.com/marmos91/veilfs/pkg/metrics"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the health/metrics HTTP server over a long-lived Core",
	Long: `serve opens a Core and keeps it alive behind a small HTTP surface:
/healthz and /readyz for probes, and /metrics when metrics are enabled
(§11.4). A single bearer token, minted at startup and printed once to
stderr, gates everything but the probes and metrics endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		core, cfg, err := openCore(ctx)
		if err != nil {
			return err
		}

		if cfg.Telemetry.Enabled {
			shutdown, err := telemetry.Init(ctx, telemetry.Config{
				Enabled:     true,
				ServiceName: "veilfs",
				Endpoint:    cfg.Telemetry.Endpoint,
				Insecure:    cfg.Telemetry.Insecure,
				SampleRate:  cfg.Telemetry.SampleRate,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize telemetry: %w", err)
			}
			defer shutdown(context.Background())

			if cfg.Telemetry.Profiling.Enabled {
				profShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
					Enabled:      true,
					ServiceName:  "veilfs",
					Endpoint:     cfg.Telemetry.Profiling.Endpoint,
					ProfileTypes: cfg.Telemetry.Profiling.ProfileTypes,
				})
				if err != nil {
					return fmt.Errorf("failed to initialize profiling: %w", err)
				}
				defer profShutdown()
			}
		}

		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate signing secret: %w", err)
		}
		tokens, err := apiserver.NewTokenService(apiserver.TokenConfig{Secret: secret})
		if err != nil {
			return fmt.Errorf("failed to start token service: %w", err)
		}
		token, expiresAt, err := tokens.IssueToken()
		if err != nil {
			return fmt.Errorf("failed to mint bearer token: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Bearer token (expires %s): %s\n", expiresAt.Format(time.RFC3339), token)

		var registry = metrics.GetRegistry()
		if !metrics.IsEnabled() {
			registry = nil
		}

		handler := apiserver.NewRouter(core, tokens, registry)
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", servePort),
			Handler: handler,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("serve listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("serve shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port to listen on")
}
