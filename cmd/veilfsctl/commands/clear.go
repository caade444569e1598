package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the entire namespace",
	Long: `clear drains every in-flight operation under the global lock and deletes
every folder and file under the root (§4.8.13). This is irreversible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ok, err := prompt.ConfirmDanger("This will permanently delete every file and folder", "clear")
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

		if err := core.Clear(ctx); err != nil {
			return fmt.Errorf("clear: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Namespace cleared")
		return nil
	},
}
