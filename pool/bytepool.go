// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

// Package pool provides payload buffer recycling for hioload-udp.
// Queued echoes own their payload copies; the pool bounds the allocation
// churn of enqueue/dequeue under bursty traffic.
package pool

import "sync"

// BytePool hands out fixed-capacity byte buffers backed by sync.Pool.
type BytePool struct {
	p    sync.Pool
	size int
}

// NewBytePool creates a pool of buffers with the given capacity.
func NewBytePool(size int) *BytePool {
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		return make([]byte, size)
	}
	return bp
}

// GetBuffer returns a buffer of the pool's full capacity.
func (b *BytePool) GetBuffer() []byte {
	return b.p.Get().([]byte)[:b.size]
}

// PutBuffer returns a buffer to the pool. Buffers of foreign capacity are
// dropped for the GC instead of poisoning the pool.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	b.p.Put(buf[:b.size])
}

// Size returns the capacity of buffers handed out by the pool.
func (b *BytePool) Size() int { return b.size }
