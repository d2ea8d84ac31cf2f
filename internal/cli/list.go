package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewListCommand prints the stored volumes, newest first.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored volumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closer, err := opts.openService()
			if err != nil {
				return err
			}
			defer closer()

			entries, err := svc.Gallery()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no volumes")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tVOLUME\tPAGES\tAT")
			for _, e := range entries {
				v := e.Volume
				e.Cover.Release()
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n",
					v.ID, v.Title, v.Series, len(v.Pages), v.ReaderState.CurrentPage)
			}
			return w.Flush()
		},
	}
}
