package httpcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionTryAcquireEnforcesSingleOwner(t *testing.T) {
	conn, _ := newTestConnection()

	assert.True(t, conn.tryAcquire())
	assert.False(t, conn.tryAcquire(), "a second acquire must fail while the first owner holds the connection")

	conn.release()
	assert.True(t, conn.tryAcquire(), "acquire must succeed again after release")
}

func TestConnectionTouchResetsIdleSince(t *testing.T) {
	conn, _ := newTestConnection()
	conn.touch()
	assert.Less(t, conn.idleSince(), 100*time.Millisecond)
}

func TestConnectionRegistryRemoveIsIdempotent(t *testing.T) {
	r := newConnectionRegistry()
	conn, _ := newTestConnection()
	conn.fd = 7
	r.Register(conn)
	assert.Equal(t, 1, r.Len())

	r.Remove(7)
	assert.Equal(t, 0, r.Len())

	r.Remove(7) // second remove is a harmless no-op (spec §4.7 invariant)
	assert.Equal(t, 0, r.Len())
}

func TestConnectionRegistrySnapshotIsACopy(t *testing.T) {
	r := newConnectionRegistry()
	a, _ := newTestConnection()
	a.fd = 1
	r.Register(a)

	snap := r.Snapshot()
	a2 := assert.New(t)
	a2.Len(snap, 1)

	b, _ := newTestConnection()
	b.fd = 2
	r.Register(b)
	a2.Len(snap, 1, "snapshot must not observe mutations made after it was taken")
	a2.Equal(2, r.Len())
}
