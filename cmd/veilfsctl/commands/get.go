package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <remote-file> <local-file>",
	Short: "Download a file's decrypted content",
	Long: `get streams the decrypted bytes of <remote-file> (§4.8.6) to stdout when
<local-file> is "-", otherwise to the named local file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		remotePath, localPath := args[0], args[1]

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		data, err := core.GetFileData(ctx, remotePath)
		if err != nil {
			return fmt.Errorf("get %s: %w", remotePath, err)
		}
		defer data.Close()

		var dst io.Writer
		if localPath == "-" {
			dst = cmd.OutOrStdout()
		} else {
			f, err := os.Create(localPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", localPath, err)
			}
			defer f.Close()
			dst = f
		}

		if _, err := io.Copy(dst, data); err != nil {
			return fmt.Errorf("get %s: %w", remotePath, err)
		}

		if localPath != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s to %s\n", remotePath, localPath)
		}
		return nil
	},
}
