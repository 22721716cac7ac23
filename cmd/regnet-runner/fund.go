package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fundCmd = &cobra.Command{
	Use:   "fund <address>",
	Args:  cobra.ExactArgs(1),
	Short: "Send 1 coin to an address and mine a confirming block",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHarness()
		if err != nil {
			return err
		}
		defer h.close()

		return h.runWithDiagnostics(cmd.Context(), func(ctx context.Context) error {
			txid, err := h.chain.Fund(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("funded %s (txid %s, confirmed)\n", args[0], txid)
			return nil
		})
	},
}
