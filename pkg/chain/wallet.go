package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// EnsureWallet makes sure the mining wallet exists and is loaded. It is
// idempotent: a wallet that already exists is loaded rather than recreated,
// and a wallet that is already loaded is left alone. The final getwalletinfo
// probe catches wallets that exist on disk but failed to load.
func (c *Client) EnsureWallet(ctx context.Context) error {
	out, err := c.call(ctx, false, "listwallets")
	if err != nil {
		return fmt.Errorf("listwallets: %w", err)
	}

	var loaded []string
	if err := json.Unmarshal([]byte(out), &loaded); err != nil {
		return fmt.Errorf("unexpected listwallets output %q: %w", out, err)
	}

	found := false
	for _, name := range loaded {
		if name == c.cfg.Wallet {
			found = true
			break
		}
	}

	if !found {
		c.logger.Info("creating mining wallet", "wallet", c.cfg.Wallet)
		if _, err := c.call(ctx, false, "createwallet", c.cfg.Wallet); err != nil {
			// The wallet can exist on disk from a previous run without
			// being loaded; load it instead of failing
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("createwallet: %w", err)
			}
			if _, err := c.call(ctx, false, "loadwallet", c.cfg.Wallet); err != nil {
				return fmt.Errorf("loadwallet: %w", err)
			}
		}
	}

	if _, err := c.call(ctx, true, "getwalletinfo"); err != nil {
		return fmt.Errorf("wallet %s is not accessible: %w", c.cfg.Wallet, err)
	}

	c.logger.Info("mining wallet ready", "wallet", c.cfg.Wallet)
	return nil
}
