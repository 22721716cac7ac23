package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureWalletAlreadyLoaded(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"listwallets":   `["miner"]`,
		"getwalletinfo": `{"walletname":"miner"}`,
	}}
	c := testChainClient(exec)

	err := c.EnsureWallet(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"listwallets", "getwalletinfo"}, exec.methods(),
		"an already-loaded wallet is never recreated")
}

func TestEnsureWalletCreatesWhenAbsent(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"listwallets":   `[]`,
		"createwallet":  `{"name":"miner"}`,
		"getwalletinfo": `{"walletname":"miner"}`,
	}}
	c := testChainClient(exec)

	err := c.EnsureWallet(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"listwallets", "createwallet", "getwalletinfo"}, exec.methods())
}

func TestEnsureWalletLoadsExistingOnDiskWallet(t *testing.T) {
	exec := &fakeExecutor{
		responses: map[string]string{
			"listwallets":   `[]`,
			"loadwallet":    `{"name":"miner"}`,
			"getwalletinfo": `{"walletname":"miner"}`,
		},
		errors: map[string]error{
			"createwallet": errors.New(`Wallet file verification failed. Failed to create database path. Database already exists.`),
		},
	}
	c := testChainClient(exec)

	err := c.EnsureWallet(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"listwallets", "createwallet", "loadwallet", "getwalletinfo"}, exec.methods())
}

func TestEnsureWalletIdempotent(t *testing.T) {
	// Two bootstrap passes in sequence must both succeed
	exec := &fakeExecutor{responses: map[string]string{
		"listwallets":   `["miner"]`,
		"getwalletinfo": `{"walletname":"miner"}`,
	}}
	c := testChainClient(exec)

	require.NoError(t, c.EnsureWallet(context.Background()))
	require.NoError(t, c.EnsureWallet(context.Background()))
}

func TestEnsureWalletFailsWhenInaccessible(t *testing.T) {
	// The wallet exists on disk but did not load
	exec := &fakeExecutor{
		responses: map[string]string{
			"listwallets": `["miner"]`,
		},
		errors: map[string]error{
			"getwalletinfo": errors.New("Requested wallet does not exist or is not loaded"),
		},
	}
	c := testChainClient(exec)

	err := c.EnsureWallet(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accessible")
}

func TestEnsureWalletSurfacesCreateFailure(t *testing.T) {
	exec := &fakeExecutor{
		responses: map[string]string{"listwallets": `[]`},
		errors:    map[string]error{"createwallet": errors.New("disk full")},
	}
	c := testChainClient(exec)

	err := c.EnsureWallet(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
