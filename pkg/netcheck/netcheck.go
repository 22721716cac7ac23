// Package netcheck answers one question: is a TCP port already bound on this
// host. It is a pre-flight gate only; the window between the check and the
// eventual bind by a service is unavoidably racy and accepted as such.
package netcheck

import (
	"fmt"
	"runtime"

	gnet "github.com/shirou/gopsutil/v3/net"
)

// Checker reports whether a local TCP port has a listener
type Checker interface {
	IsBound(port uint32) (bool, error)
}

// New selects the platform implementation. Platforms without a supported
// socket-enumeration backend get an error, never a silent false.
func New() (Checker, error) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		return &socketChecker{}, nil
	default:
		return nil, fmt.Errorf("port availability checks are not supported on %s", runtime.GOOS)
	}
}

// socketChecker enumerates listening sockets through gopsutil
type socketChecker struct{}

// IsBound returns true when any process has a TCP listener on port. The
// protocol spoken behind the listener is irrelevant: a bound port means a
// stale or foreign service and start must not proceed.
func (socketChecker) IsBound(port uint32) (bool, error) {
	conns, err := gnet.Connections("tcp")
	if err != nil {
		return false, fmt.Errorf("failed to enumerate sockets: %w", err)
	}

	for _, conn := range conns {
		if conn.Status == "LISTEN" && conn.Laddr.Port == port {
			return true, nil
		}
	}

	return false, nil
}
