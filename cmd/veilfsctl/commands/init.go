package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Write a default veilfs configuration file.

Examples:
  # Initialize config file at the default location
  veilfsctl init

  # Initialize at a custom path
  veilfsctl init --config /etc/veilfs/config.yaml

  # Overwrite an existing file
  veilfsctl init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		var err error

		if configPath != "" {
			err = config.InitConfigToPath(configPath, initForce)
			path = configPath
		} else {
			path, err = config.InitConfig(initForce)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
		fmt.Fprintln(cmd.OutOrStdout(), "  1. Edit the configuration file to customize your storage adapter")
		fmt.Fprintf(cmd.OutOrStdout(), "  2. export %s=$(head -c32 /dev/urandom | base64)\n", "VEILFS_DERIVATION_KEY")
		fmt.Fprintln(cmd.OutOrStdout(), "  3. veilfsctl mount")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config file")
}
