package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/internal/cli/prompt"
	"github.com/marmos91/veilfs/pkg/evfs"
	"github.com/spf13/cobra"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete file %s?", args[0]), rmForce)
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

		if err := core.DeleteFile(ctx, args[0], evfs.DeleteFileOptions{}); err != nil {
			return fmt.Errorf("rm %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Skip the confirmation prompt")
}
