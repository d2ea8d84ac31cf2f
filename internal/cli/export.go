package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mokurodb/mokurodb/internal/store"
)

// NewExportCommand re-encodes a stored volume as an archive on disk.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a volume back to an archive file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVolumeID(args[0])
			if err != nil {
				return err
			}

			svc, closer, err := opts.openService()
			if err != nil {
				return err
			}
			defer closer()

			f, err := svc.Export(id)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(f.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func parseVolumeID(s string) (store.VolumeID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid volume id %q", s)
	}
	return store.VolumeID(id), nil
}
