package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Validate configuration and open the Core once",
	Long: `mount loads configuration, resolves the derivation key, constructs the
configured storage adapter, and opens a Core against it (§4.8.1).

There is no long-lived mount across invocations: every other subcommand
(ls, mkdir, put, get, mv, cp, rm, rmdir, clear) opens its own Core for the
duration of that one command. mount exists to let an operator confirm the
configuration and key material are correct before running anything else,
and to trigger first-time key-material generation (§4.8.1's "derives keys,
materializes the root folder and keys-record") up front.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		core, cfg, err := openCore(ctx)
		if err != nil {
			return err
		}
		_ = core

		fmt.Fprintf(cmd.OutOrStdout(), "Core opened successfully (storage: %s)\n", cfg.Storage.Type)
		return nil
	},
}
