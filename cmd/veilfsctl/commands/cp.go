package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/pkg/evfs/vpath"
	"github.com/spf13/cobra"
)

var cpCmd = &cobra.Command{
	Use:   "cp <src> <dst>",
	Short: "Copy a file or folder",
	Long: `cp duplicates <src> at <dst> (§4.8.9's copyFile, §4.8.10's copyFolder),
giving the copy a fresh content uid. Both paths must be of the same
kind: folder paths end in "/", file paths do not.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		srcRaw, dstRaw := args[0], args[1]

		src, err := vpath.Parse(srcRaw)
		if err != nil {
			return fmt.Errorf("cp: invalid source path %q: %w", srcRaw, err)
		}
		dst, err := vpath.Parse(dstRaw)
		if err != nil {
			return fmt.Errorf("cp: invalid destination path %q: %w", dstRaw, err)
		}
		if src.Kind() != dst.Kind() {
			return fmt.Errorf("cp: %q and %q must both be files or both be folders", srcRaw, dstRaw)
		}

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		if src.Kind() == vpath.Folder {
			err = core.CopyFolder(ctx, srcRaw, dstRaw)
		} else {
			err = core.CopyFile(ctx, srcRaw, dstRaw)
		}
		if err != nil {
			return fmt.Errorf("cp %s %s: %w", srcRaw, dstRaw, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", srcRaw, dstRaw)
		return nil
	},
}
