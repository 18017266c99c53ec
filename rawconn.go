//go:build linux

package httpcore

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// rawConn adapts a raw non-blocking socket file descriptor, as produced by
// EventLoop's epoll accept loop, to the net.Conn interface Connection and
// Response expect — so response writing and connection bookkeeping stay
// transport-agnostic even though the event loop itself talks to the fd
// directly for reads.
type rawConn struct {
	fd     int
	remote net.Addr
	local  net.Addr
}

func newRawConn(fd int, sa unix.Sockaddr) net.Conn {
	return &rawConn{fd: fd, remote: sockaddrToAddr(sa)}
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	default:
		return &net.TCPAddr{}
	}
}

func (c *rawConn) Read(b []byte) (int, error) {
	n, err := unix.Read(c.fd, b)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, net.ErrClosed
	}
	return n, nil
}

func (c *rawConn) Write(b []byte) (int, error) {
	return unix.Write(c.fd, b)
}

func (c *rawConn) Close() error {
	return unix.Close(c.fd)
}

func (c *rawConn) LocalAddr() net.Addr  { return c.local }
func (c *rawConn) RemoteAddr() net.Addr { return c.remote }

func (c *rawConn) SetDeadline(t time.Time) error      { return nil }
func (c *rawConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *rawConn) SetWriteDeadline(t time.Time) error { return nil }
