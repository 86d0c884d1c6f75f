package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestConnectionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the configured AI API key is accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app) error {
				if !a.provider.TestConnection(cmd.Context()) {
					return fmt.Errorf("connection to %s failed: check ai.api_key and ai.base_url", a.cfg.AI.Provider)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s (model %s)\n", a.cfg.AI.Provider, a.provider.Model())
				return nil
			})
		},
	}
}
