package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/internal/bytesize"
	"github.com/marmos91/veilfs/internal/cli/output"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls <folder>",
	Short: "List a folder's children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		entries, err := core.ListFolder(ctx, args[0])
		if err != nil {
			return fmt.Errorf("ls %s: %w", args[0], err)
		}

		table := output.NewTableData("NAME", "TYPE", "SIZE", "MODIFIED")
		for _, entry := range entries {
			switch {
			case entry.Err != nil:
				table.AddRow("?", "error", "-", entry.Err.Error())
			case entry.Folder != nil:
				table.AddRow(entry.Folder.Name, "folder", "-", entry.Folder.Modified.Format("2006-01-02 15:04:05"))
			case entry.File != nil:
				size := bytesize.ByteSize(entry.File.Data.Bytes.Decrypted).String()
				table.AddRow(entry.File.Name, "file", size, entry.File.Modified.Format("2006-01-02 15:04:05"))
			}
		}

		return output.PrintTable(cmd.OutOrStdout(), table)
	},
}
