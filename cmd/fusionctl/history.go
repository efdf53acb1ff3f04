package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/fusionapi/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List cached fusion results, newest first",
		Long: `List cached fusion results, newest first.

The default in-memory store lives only as long as one invocation, so earlier
results are listed only with the DynamoDB store enabled
(FUSION_STORE_USE_DYNAMODB=true or USE_REAL_DYNAMODB=true).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				page, err := a.orch.History(cmd.Context(), limit, cursor)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, page)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", store.DefaultLimit, "entries per page (max 100)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "cursor from a previous page")
	return cmd
}
