package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand cascade deletes a volume and all of its rows.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a volume and all of its pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVolumeID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete volume %d without --yes", id)
			}

			svc, closer, err := opts.openService()
			if err != nil {
				return err
			}
			defer closer()

			if err := svc.DeleteVolume(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted volume %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
