package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/fusionapi/store"
)

// NewStoreCommand creates the store command.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store <json|->",
		Short: "Store a custom JSON object",
		Long: `Store a custom JSON object for 30 days. Pass the object as the argument,
or "-" to read it from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := []byte(args[0])
			if args[0] == "-" {
				var err error
				if raw, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			var doc store.Document
			if err := json.Unmarshal(raw, &doc); err != nil {
				return usageError(fmt.Errorf("custom data must be a JSON object: %w", err))
			}

			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				rec, err := a.orch.StoreCustomData(cmd.Context(), doc)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), rootOpts.Format, rec)
			})
		},
	}
	return cmd
}
