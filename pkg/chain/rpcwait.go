package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/rpcclient"

	"github.com/jihwankim/regnet-utils/pkg/reporting"
)

// WaitRPCReady polls the node's JSON-RPC endpoint until a basic status query
// succeeds. A "process started" log line does not guarantee the RPC server is
// serving yet, so this is a second readiness gate independent of the log
// markers. Attempt-bounded like the log poller.
func WaitRPCReady(ctx context.Context, host, user, pass string, maxAttempts int, interval time.Duration, logger *reporting.Logger) error {
	connCfg := &rpcclient.ConnConfig{
		Host:         host,
		User:         user,
		Pass:         pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := rpcclient.New(connCfg, nil)
		if err == nil {
			_, err = client.GetBlockChainInfo()
			client.Shutdown()
			if err == nil {
				logger.Info("node RPC serving", "host", host, "attempts", attempt)
				return nil
			}
		}

		logger.Debug("node RPC not serving yet",
			"host", host, "attempt", attempt, "error", err)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("node RPC at %s did not serve within %d attempts", host, maxAttempts)
}
