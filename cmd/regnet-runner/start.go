package main

import (
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Args:  cobra.NoArgs,
	Short: "Start the regtest environment",
	Long: `Tears down any previous run, recreates data directories, verifies the
reserved ports are free, brings all services up, waits for the node and the
indexer to become ready, bootstraps the mining wallet and mines the initial
blocks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHarness()
		if err != nil {
			return err
		}
		defer h.close()

		return h.runWithDiagnostics(cmd.Context(), h.manager.Start)
	},
}
