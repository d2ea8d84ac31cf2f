package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mokurodb/mokurodb/pkg/library"
)

// NewImportCommand imports one or more volume archives. Each file is
// its own success or failure; one bad archive never blocks the rest.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import volume archives into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closer, err := opts.openService()
			if err != nil {
				return err
			}
			defer closer()

			files := make([]library.NamedFile, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				files = append(files, library.NamedFile{Name: filepath.Base(path), Data: data})
			}

			failed := 0
			for _, res := range svc.ImportAll(files) {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED: %v\n", res.Name, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %q as volume %d (%d pages)\n",
					res.Name, res.Volume.Title, res.Volume.ID, len(res.Volume.Pages))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d archives failed to import", failed, len(files))
			}
			return nil
		},
	}
}
