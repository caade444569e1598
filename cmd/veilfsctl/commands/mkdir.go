package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/pkg/evfs"
	"github.com/spf13/cobra"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <folder>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		if err := core.CreateFolder(ctx, args[0], evfs.CreateFolderOptions{}); err != nil {
			return fmt.Errorf("mkdir %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s\n", args[0])
		return nil
	},
}
