package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "sendtoaddress <address> <amount>",
	Args:  cobra.ExactArgs(2),
	Short: "Send an amount to an address without mining a confirming block",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHarness()
		if err != nil {
			return err
		}
		defer h.close()

		return h.runWithDiagnostics(cmd.Context(), func(ctx context.Context) error {
			txid, err := h.chain.SendToAddress(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("sent %s to %s (txid %s, unconfirmed)\n", args[1], args[0], txid)
			return nil
		})
	},
}
