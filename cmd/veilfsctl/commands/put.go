package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/veilfs/pkg/evfs"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <local-file> <remote-file>",
	Short: "Upload a local file, creating it first if it does not exist",
	Long: `put reads from stdin when <local-file> is "-", otherwise from the named
local file, and writes the content as the remote file's data (§4.8.4,
§4.8.5). The remote file is created first if it does not already exist.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		localPath, remotePath := args[0], args[1]

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		var src io.Reader
		if localPath == "-" {
			src = cmd.InOrStdin()
		} else {
			f, err := os.Open(localPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", localPath, err)
			}
			defer f.Close()
			src = f
		}

		kind, err := core.Exists(ctx, remotePath)
		if err != nil {
			return fmt.Errorf("put %s: %w", remotePath, err)
		}
		if kind == evfs.NoEntry {
			if err := core.CreateFile(ctx, remotePath, evfs.CreateFileOptions{}); err != nil {
				return fmt.Errorf("put %s: %w", remotePath, err)
			}
		}

		if err := core.SetFileData(ctx, remotePath, src); err != nil {
			return fmt.Errorf("put %s: %w", remotePath, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to %s\n", localPath, remotePath)
		return nil
	},
}
