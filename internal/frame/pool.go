package frame

import "sync"

// Pool recycles Buffers across connections, mirroring the teacher's BytePool
// discipline (sync.Pool of reusable byte storage) one level up: instead of
// pooling raw []byte, it pools the whole cursor-tracking Buffer so a freshly
// accepted connection doesn't pay for a new 4 KiB allocation and a zeroed
// Buffer struct.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a Pool whose Buffers start at the given initial capacity.
func NewPool(initialCap int) *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		return New(initialCap)
	}
	return p
}

// Get returns a Buffer ready for use, either recycled or freshly allocated.
func (p *Pool) Get() *Buffer {
	return p.pool.Get().(*Buffer)
}

// Put resets b and returns it to the pool.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	b.Reset()
	p.pool.Put(b)
}
