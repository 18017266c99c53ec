package httpcore

import "github.com/valyala/bytebufferpool"

// BufferPool maintains a bounded stack of reusable read-accumulator
// buffers (spec §4.1, C1). acquire allocates a bytebufferpool.ByteBuffer
// (itself pool-backed for its internal storage) when the stack is empty;
// release returns it to the stack iff the stack has room, otherwise lets
// it be reclaimed by bytebufferpool's own global pool. Buffers are not
// thread-safe; callers must not retain a reference after release.
type BufferPool struct {
	stack       chan *bytebufferpool.ByteBuffer
	maxPoolSize int
}

// NewBufferPool builds a pool that retains at most maxPoolSize buffers.
func NewBufferPool(maxPoolSize int) *BufferPool {
	if maxPoolSize <= 0 {
		maxPoolSize = 1
	}
	return &BufferPool{
		stack:       make(chan *bytebufferpool.ByteBuffer, maxPoolSize),
		maxPoolSize: maxPoolSize,
	}
}

// Acquire returns a cleared buffer, reusing one from the stack if
// available, or asking bytebufferpool for a fresh one otherwise.
func (p *BufferPool) Acquire() *bytebufferpool.ByteBuffer {
	select {
	case b := <-p.stack:
		b.Reset()
		return b
	default:
		return bytebufferpool.Get()
	}
}

// Release returns b to the pool iff the stack has spare capacity;
// otherwise b is handed back to bytebufferpool's own pool and discarded
// from this BufferPool's perspective (spec §4.1 "discards" on overflow).
func (p *BufferPool) Release(b *bytebufferpool.ByteBuffer) {
	select {
	case p.stack <- b:
	default:
		bytebufferpool.Put(b)
	}
}
