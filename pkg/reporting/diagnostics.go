package reporting

import (
	"context"
	"fmt"
	"io"
)

// LogSource provides accumulated log output for a named service
type LogSource interface {
	ServiceLogs(ctx context.Context, service string) (string, error)
}

// DumpServiceLogs writes the recent log output of a service to w, framed so
// it is easy to spot in test output. It is called on the fatal path, so a
// failure to fetch logs is reported but never masks the original error.
func DumpServiceLogs(ctx context.Context, w io.Writer, source LogSource, service string) {
	fmt.Fprintf(w, "---- %s logs ----\n", service)

	logs, err := source.ServiceLogs(ctx, service)
	if err != nil {
		fmt.Fprintf(w, "(failed to fetch logs: %v)\n", err)
	} else if logs == "" {
		fmt.Fprintln(w, "(no log output)")
	} else {
		fmt.Fprintln(w, logs)
	}

	fmt.Fprintf(w, "---- end %s logs ----\n", service)
}
