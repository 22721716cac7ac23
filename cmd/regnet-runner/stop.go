package main

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Args:  cobra.NoArgs,
	Short: "Tear down the regtest environment",
	Long: `Stops all services including orphaned containers and deletes every data
directory. Succeeds even when nothing is running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHarness()
		if err != nil {
			return err
		}
		defer h.close()

		return h.runWithDiagnostics(cmd.Context(), h.manager.Stop)
	},
}
