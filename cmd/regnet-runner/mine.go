package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine <blocks>",
	Args:  cobra.ExactArgs(1),
	Short: "Mine a number of blocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("blocks must be a positive integer, got %q", args[0])
		}

		h, err := newHarness()
		if err != nil {
			return err
		}
		defer h.close()

		return h.runWithDiagnostics(cmd.Context(), func(ctx context.Context) error {
			height, err := h.chain.Mine(ctx, n)
			if err != nil {
				return err
			}
			fmt.Printf("mined %d block(s), height is now %d\n", n, height)
			return nil
		})
	},
}
