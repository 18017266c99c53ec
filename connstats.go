package httpcore

import (
	"encoding/binary"
	"net"
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
)

// connStats tracks per-peer (remote host, port ignored) parse/framing failure counts in a
// bounded off-heap cache, grounded on the teacher's
// internal/utils/error(error_cache.go) ErrorHandler — there it counted
// per-host bypass-probe failures; here the EventLoop increments it on every
// ErrMalformedStartLine/ErrMalformedHeader/ErrMalformedFraming disposition
// and resets it after a peer completes a request cleanly, so repeated
// protocol failures from one peer show up in logs without per-connection
// heap allocation.
type connStats struct {
	cache  *fastcache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// newConnStats allocates a 32MB cache, fastcache's documented minimum.
func newConnStats() *connStats {
	return &connStats{cache: fastcache.New(32 * 1024 * 1024)}
}

// RecordFailure increments and returns the failure count for remoteAddr.
func (s *connStats) RecordFailure(remoteAddr string) uint32 {
	key := peerKey(remoteAddr)
	buf := make([]byte, 4)
	if v := s.cache.Get(buf[:0], key); len(v) == 4 {
		count := binary.LittleEndian.Uint32(v) + 1
		binary.LittleEndian.PutUint32(buf, count)
		s.cache.Set(key, buf)
		s.hits.Add(1)
		return count
	}
	binary.LittleEndian.PutUint32(buf, 1)
	s.cache.Set(key, buf)
	s.misses.Add(1)
	return 1
}

// FailureCount returns the current failure count for remoteAddr.
func (s *connStats) FailureCount(remoteAddr string) uint32 {
	buf := make([]byte, 4)
	if v := s.cache.Get(buf[:0], peerKey(remoteAddr)); len(v) == 4 {
		return binary.LittleEndian.Uint32(v)
	}
	return 0
}

// Reset clears the failure count for remoteAddr, called after a connection
// completes a request successfully.
func (s *connStats) Reset(remoteAddr string) {
	s.cache.Del(peerKey(remoteAddr))
}

// peerKey drops the port from a host:port address so every connection from
// one peer shares a count; an address without a port is used as is.
func peerKey(remoteAddr string) []byte {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return []byte(host)
	}
	return []byte(remoteAddr)
}

// Close releases the cache's off-heap memory.
func (s *connStats) Close() {
	s.cache.Reset()
}
