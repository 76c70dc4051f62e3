//go:build unix

package relay

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddr lets the relay rebind its port while old sessions linger in TIME_WAIT.
func reuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	if err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
