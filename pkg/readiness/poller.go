// Package readiness infers that a service is usable from its log output.
// A service is ready once a known marker line appears; until then the poller
// sits in a waiting state, re-fetching logs at a fixed interval, and gives up
// after a bounded number of attempts.
package readiness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jihwankim/regnet-utils/pkg/reporting"
)

// LogSource provides accumulated log output for a named service
type LogSource interface {
	ServiceLogs(ctx context.Context, service string) (string, error)
}

// Poller waits for log markers. Timeouts are attempt-count-based: total wait
// scales as MaxAttempts times Interval.
type Poller struct {
	Source      LogSource
	MaxAttempts int
	Interval    time.Duration
	Logger      *reporting.Logger
}

// WaitReady polls the service's logs until marker appears as a substring.
// Fetch errors count as missed attempts because the container may not exist
// yet right after it was scheduled. After MaxAttempts without a match the
// wait fails; there is no backoff and no cancellation beyond ctx.
func (p *Poller) WaitReady(ctx context.Context, service, marker string) error {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		logs, err := p.Source.ServiceLogs(ctx, service)
		if err != nil {
			p.Logger.Warn("log fetch failed, retrying",
				"service", service, "attempt", attempt, "error", err)
		} else if strings.Contains(logs, marker) {
			p.Logger.Info("service ready", "service", service, "attempts", attempt)
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Interval):
		}
	}

	return fmt.Errorf("service %s did not log %q within %d attempts",
		service, marker, p.MaxAttempts)
}
