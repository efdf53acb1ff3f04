package main

import (
	"github.com/spf13/cobra"

	"github.com/jonwraymond/fusionapi/fusion"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "get [character-id]",
		Short: "Fetch a fused character, or a page of characters",
		Long: `Fetch one character with its homeworld and local weather. Without an id,
fetch a page of characters with their homeworld names instead.

Results are served from the cache while fresh. The default in-memory store
lives only as long as one invocation, so a result is reported cached only
with the DynamoDB store enabled (FUSION_STORE_USE_DYNAMODB=true or
USE_REAL_DYNAMODB=true).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				var (
					res fusion.Payload
					err error
				)
				if len(args) == 1 {
					res, err = a.orch.Character(cmd.Context(), args[0])
				} else {
					res, err = a.orch.Characters(cmd.Context(), page)
				}
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, res)
			})
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to list when no id is given")
	return cmd
}
