package httpcore

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
)

// Connection owns one non-blocking stream endpoint, its read-accumulator,
// and a last-active timestamp (spec §3). It is created on accept by the
// event loop; bytes are appended by its read task on a read-pool worker, and
// it is closed by the pool worker that finishes with it, the idle reaper, or
// Server.Stop. At most one worker may process it at a time — enforced by
// the event loop suspending read interest while a read or process task is
// in flight (spec §5 "Per-connection ordering").
type Connection struct {
	id         string
	fd         int
	netConn    net.Conn
	remoteAddr string

	accumulator *bytebufferpool.ByteBuffer
	lastActive  atomic.Int64 // unix nanoseconds
	inFlight    atomic.Bool
	closed      atomic.Bool
	keepAlive   bool
}

func newConnection(fd int, nc net.Conn, buf *bytebufferpool.ByteBuffer) *Connection {
	c := &Connection{
		id:          uuid.NewString(),
		fd:          fd,
		netConn:     nc,
		remoteAddr:  nc.RemoteAddr().String(),
		accumulator: buf,
		keepAlive:   true,
	}
	c.touch()
	return c
}

// touch stamps the connection as active now, read by IdleReaper.
func (c *Connection) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

func (c *Connection) idleSince() time.Duration {
	return time.Since(time.Unix(0, c.lastActive.Load()))
}

// tryAcquire enforces the at-most-one-worker invariant: returns false if
// another worker already owns this connection.
func (c *Connection) tryAcquire() bool {
	return c.inFlight.CompareAndSwap(false, true)
}

func (c *Connection) release() {
	c.inFlight.Store(false)
}

// writeAll writes payload to the socket in a loop until fully drained
// (spec §4.4 send algorithm step 5).
func (c *Connection) writeAll(payload []byte) error {
	for len(payload) > 0 {
		n, err := c.netConn.Write(payload)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) {
				// Non-blocking socket buffer full: retry until it drains.
				continue
			}
			return err
		}
		payload = payload[n:]
	}
	return nil
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Connection) IsClosed() bool { return c.closed.Load() }

// ID returns the connection's opaque identifier, stable for its lifetime.
func (c *Connection) ID() string { return c.id }

// RemoteAddr returns the peer's address string.
func (c *Connection) RemoteAddr() string { return c.remoteAddr }

// ConnectionRegistry maps live connections by file descriptor to their
// accumulator/timestamp state (spec §4.7, C7). The event loop registers
// connections; whichever goroutine closes one (a pool worker, the idle
// reaper, or Server.Stop) removes it. The reaper snapshots under the read
// lock to avoid mutating while iterating.
type ConnectionRegistry struct {
	mu   sync.RWMutex
	byFD map[int]*Connection
}

func newConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{byFD: make(map[int]*Connection)}
}

func (r *ConnectionRegistry) Register(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFD[c.fd] = c
}

func (r *ConnectionRegistry) Get(fd int) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byFD[fd]
	return c, ok
}

// Remove deletes the entry for fd exactly once; a second call for the same
// fd is a harmless no-op (spec §4.7 invariant).
func (r *ConnectionRegistry) Remove(fd int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byFD, fd)
}

// Snapshot returns a point-in-time copy of all registered connections, for
// the idle reaper to scan without holding the lock during closes.
func (r *ConnectionRegistry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.byFD))
	for _, c := range r.byFD {
		out = append(out, c)
	}
	return out
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFD)
}
