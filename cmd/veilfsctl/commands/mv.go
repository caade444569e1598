package commands

import (
	"fmt"

	"github.com/marmos91/veilfs/pkg/evfs/vpath"
	"github.com/spf13/cobra"
)

var mvCmd = &cobra.Command{
	Use:   "mv <src> <dst>",
	Short: "Rename or move a file or folder",
	Long: `mv renames <src> to <dst> when they share a parent folder (§4.8.9), or
moves <src> under <dst>'s parent otherwise (§4.8.10). Both paths must be
of the same kind: folder paths end in "/", file paths do not.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		srcRaw, dstRaw := args[0], args[1]

		src, err := vpath.Parse(srcRaw)
		if err != nil {
			return fmt.Errorf("mv: invalid source path %q: %w", srcRaw, err)
		}
		dst, err := vpath.Parse(dstRaw)
		if err != nil {
			return fmt.Errorf("mv: invalid destination path %q: %w", dstRaw, err)
		}
		if src.Kind() != dst.Kind() {
			return fmt.Errorf("mv: %q and %q must both be files or both be folders", srcRaw, dstRaw)
		}

		core, _, err := openCore(ctx)
		if err != nil {
			return err
		}

		sameParent := src.Parent().String() == dst.Parent().String()

		switch {
		case src.Kind() == vpath.Folder && sameParent:
			err = core.RenameFolder(ctx, srcRaw, dst.Name())
		case src.Kind() == vpath.Folder:
			err = core.MoveFolder(ctx, srcRaw, dstRaw)
		case sameParent:
			err = core.RenameFile(ctx, srcRaw, dst.Name())
		default:
			err = core.MoveFile(ctx, srcRaw, dstRaw)
		}
		if err != nil {
			return fmt.Errorf("mv %s %s: %w", srcRaw, dstRaw, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", srcRaw, dstRaw)
		return nil
	},
}
