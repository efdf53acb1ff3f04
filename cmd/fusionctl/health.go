package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fusionapi/health"
)

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the store and upstream dependencies",
		Long: `Check the store and upstream dependencies. Exits non-zero when any
dependency is unhealthy; degraded dependencies are reported but succeed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				report := a.health.Report(cmd.Context())
				if err := render(cmd.OutOrStdout(), rootOpts.Format, report); err != nil {
					return err
				}
				if report.Status == health.StatusUnhealthy {
					return &exitError{code: ExitUnhealthy, err: errors.New("service unhealthy")}
				}
				return nil
			})
		},
	}
	return cmd
}
