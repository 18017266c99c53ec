package httpcore

import "time"

// IdleReaper periodically scans a ConnectionRegistry and closes any
// connection idle past idleTimeout (spec §4.9, C9).
type IdleReaper struct {
	registry    *ConnectionRegistry
	idleTimeout time.Duration
	logger      Logger
}

func newIdleReaper(registry *ConnectionRegistry, idleTimeout time.Duration, logger Logger) *IdleReaper {
	return &IdleReaper{registry: registry, idleTimeout: idleTimeout, logger: logger}
}

// Sweep closes every connection idle past idleTimeout. It is called by the
// event loop on each selector-wait timeout (spec §4.8 step 3) rather than
// running its own ticker, so there is exactly one thread ever touching
// connection state outside worker tasks.
func (r *IdleReaper) Sweep() {
	for _, c := range r.registry.Snapshot() {
		if c.idleSince() <= r.idleTimeout {
			continue
		}
		if err := c.Close(); err != nil && !isBenignWriteError(err) {
			r.logger.Warn("idle reaper close failed", "connection", c.id, "error", err.Error())
		}
		r.registry.Remove(c.fd)
	}
}
