// Package chain drives the regtest blockchain through the node's own CLI
// client, executed inside the node container. All calls are thin wrappers;
// every failure is surfaced to the caller, which treats it as fatal.
package chain

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jihwankim/regnet-utils/pkg/config"
	"github.com/jihwankim/regnet-utils/pkg/reporting"
)

// Executor runs a command inside a named service container
type Executor interface {
	ExecService(ctx context.Context, service string, cmd ...string) (string, error)
}

// Client issues bitcoin-cli commands against the core node
type Client struct {
	exec   Executor
	node   string
	cfg    config.ChainConfig
	logger *reporting.Logger
}

// New creates a chain client bound to the node service
func New(exec Executor, node string, cfg config.ChainConfig, logger *reporting.Logger) *Client {
	return &Client{
		exec:   exec,
		node:   node,
		cfg:    cfg,
		logger: logger,
	}
}

// cliArgs builds the bitcoin-cli argument vector. walletScoped routes the
// call at the mining wallet's RPC namespace.
func (c *Client) cliArgs(walletScoped bool, args ...string) []string {
	cmd := []string{
		"bitcoin-cli",
		"-regtest",
		"-rpcuser=" + c.cfg.RPCUser,
		"-rpcpassword=" + c.cfg.RPCPass,
	}
	if walletScoped {
		cmd = append(cmd, "-rpcwallet="+c.cfg.Wallet)
	}
	return append(cmd, args...)
}

func (c *Client) call(ctx context.Context, walletScoped bool, args ...string) (string, error) {
	return c.exec.ExecService(ctx, c.node, c.cliArgs(walletScoped, args...)...)
}

// BlockHeight returns the current chain height
func (c *Client) BlockHeight(ctx context.Context) (int64, error) {
	out, err := c.call(ctx, false, "getblockcount")
	if err != nil {
		return 0, fmt.Errorf("getblockcount: %w", err)
	}

	height, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected getblockcount output %q: %w", out, err)
	}

	return height, nil
}

// Mine generates n blocks to a fresh address from the mining wallet and
// returns the resulting chain height
func (c *Client) Mine(ctx context.Context, n int) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("block count must be at least 1, got %d", n)
	}

	addr, err := c.call(ctx, true, "getnewaddress")
	if err != nil {
		return 0, fmt.Errorf("getnewaddress: %w", err)
	}

	if _, err := c.call(ctx, true, "generatetoaddress", strconv.Itoa(n), addr); err != nil {
		return 0, fmt.Errorf("generatetoaddress: %w", err)
	}

	height, err := c.BlockHeight(ctx)
	if err != nil {
		return 0, err
	}

	c.logger.Info("blocks mined", "count", n, "height", height)
	return height, nil
}

// Fund sends 1 coin to address and immediately mines one confirming block.
// Funding without confirmation is not considered complete.
func (c *Client) Fund(ctx context.Context, address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("address is required")
	}

	txid, err := c.call(ctx, true, "sendtoaddress", address, "1")
	if err != nil {
		return "", fmt.Errorf("sendtoaddress: %w", err)
	}

	if _, err := c.Mine(ctx, 1); err != nil {
		return "", fmt.Errorf("confirming block: %w", err)
	}

	c.logger.Info("address funded", "address", address, "txid", txid)
	return txid, nil
}

// SendToAddress sends amount to address without mining a confirming block;
// the transaction stays in the mempool until the caller mines.
func (c *Client) SendToAddress(ctx context.Context, address, amount string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("address is required")
	}
	if amount == "" {
		return "", fmt.Errorf("amount is required")
	}
	if v, err := strconv.ParseFloat(amount, 64); err != nil || v <= 0 {
		return "", fmt.Errorf("amount must be a positive number, got %q", amount)
	}

	txid, err := c.call(ctx, true, "sendtoaddress", address, amount)
	if err != nil {
		return "", fmt.Errorf("sendtoaddress: %w", err)
	}

	c.logger.Info("payment sent", "address", address, "amount", amount, "txid", txid)
	return txid, nil
}
