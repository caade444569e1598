// Package config implements the `veilfsctl config` subcommand group.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage veilfs configuration files.

Use 'veilfsctl init' to create a new configuration file.

Subcommands:
  show    Display current configuration
  schema  Generate JSON schema for IDE/validation`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}
