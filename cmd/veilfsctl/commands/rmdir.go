package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var rmdirForce bool

var rmdirCmd = &cobra.Command{
	Use:   "rmdir <folder>",
	Short: "Delete an empty folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete folder %s?", args[0]), rmdirForce)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		if err := core.DeleteFolder(ctx, args[0]); err != nil {
			return fmt.Errorf("rmdir %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rmdirCmd.Flags().BoolVarP(&rmdirForce, "force", "f", false, "Skip the confirmation prompt")
}
