package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/fusionapi/store"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dump stored records and recent history for debugging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				snap, err := a.orch.Inspect(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, snap)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", store.MaxLimit, "records to scan (max 100)")
	return cmd
}
