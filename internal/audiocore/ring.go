package audiocore

import "sync/atomic"

// Ring is a single-producer single-consumer lock-free ring of interleaved
// float32 samples. The capture callback is the only writer, the playback
// callback the only reader; the atomic head/tail stores give the pair
// acquire-release ordering over the sample sequence.
//
// The backing array is rounded up to a power of two for cheap masking, but
// occupancy is capped at the requested capacity so scheduling jitter cannot
// hide more than the intended amount of buffered audio.
type Ring struct {
	buf      []float32
	mask     uint64
	capacity uint64

	// head is the next index to read, tail the next to write. Only the
	// consumer advances head, only the producer advances tail.
	head atomic.Uint64
	tail atomic.Uint64
}

// NewRing creates a ring holding up to capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Ring{
		buf:      make([]float32, size),
		mask:     uint64(size - 1),
		capacity: uint64(capacity),
	}
}

// Cap returns the requested capacity.
func (r *Ring) Cap() int { return int(r.capacity) }

// Len returns the number of unread samples.
func (r *Ring) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Push appends samples, returning how many were accepted. Excess samples
// beyond the free space are dropped; the producer never blocks.
func (r *Ring) Push(samples []float32) int {
	tail := r.tail.Load()
	head := r.head.Load()
	free := r.capacity - (tail - head)
	n := uint64(len(samples))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.buf[(tail+i)&r.mask] = samples[i]
	}
	r.tail.Store(tail + n)
	return int(n)
}

// Pop reads up to len(dst) samples, returning how many were filled. The
// consumer never blocks; a short read means the producer fell behind.
func (r *Ring) Pop(dst []float32) int {
	head := r.head.Load()
	tail := r.tail.Load()
	avail := tail - head
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	for i := uint64(0); i < n; i++ {
		dst[i] = r.buf[(head+i)&r.mask]
	}
	r.head.Store(head + n)
	return int(n)
}

// Reset empties the ring. Not safe while either callback is live; only used
// between stream rebuilds.
func (r *Ring) Reset() {
	r.head.Store(0)
	r.tail.Store(0)
}
