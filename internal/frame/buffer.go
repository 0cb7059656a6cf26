// Package frame provides FrameBuffer, the per-connection staging area that
// sits between a raw net.Conn and the PacketCodec. Reads land in it as they
// arrive off the wire (which may split or coalesce logical packets in any
// way); the ConnectionFSM drains complete packets out of it as they become
// available.
package frame

import "github.com/udisondev/la2go/internal/constants"

// Buffer is a contiguous byte array with two cursors, readPos <= writePos <=
// len(buf). It is not safe for concurrent use; each connection owns exactly
// one.
type Buffer struct {
	buf      []byte
	readPos  int
	writePos int
}

// New allocates a Buffer with the given initial capacity, raised to
// constants.InitialFrameBufferSize if smaller. Callers normally pass
// constants.InitialFrameBufferSize.
func New(initialCap int) *Buffer {
	if initialCap < constants.InitialFrameBufferSize {
		initialCap = constants.InitialFrameBufferSize
	}
	return &Buffer{buf: make([]byte, initialCap)}
}

// Active returns the number of unread bytes currently staged.
func (b *Buffer) Active() int {
	return b.writePos - b.readPos
}

// Remaining returns the free capacity after writePos, before any growth.
func (b *Buffer) Remaining() int {
	return len(b.buf) - b.writePos
}

// Unread returns the staged-but-not-yet-consumed bytes. The returned slice
// aliases the buffer's backing array and is only valid until the next
// WriteCompleted, Normalize, EnsureFreeSpace or Reset call.
func (b *Buffer) Unread() []byte {
	return b.buf[b.readPos:b.writePos]
}

// WriteSlice returns the free region after writePos, for callers (typically
// net.Conn.Read) to fill directly. Call EnsureFreeSpace first if the slice
// might be empty.
func (b *Buffer) WriteSlice() []byte {
	return b.buf[b.writePos:]
}

// Normalize shifts the unread region [readPos, writePos) down to offset 0,
// reclaiming the space consumed by already-read bytes. Idempotent when
// readPos is already 0.
func (b *Buffer) Normalize() {
	if b.readPos == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.readPos:b.writePos])
	b.readPos = 0
	b.writePos = n
}

// EnsureFreeSpace guarantees Remaining() > 0 afterward, normalizing first and
// only growing the backing array if normalization alone isn't enough. Growth
// doubles the capacity, matching the doubling most Go slice-growth callers
// rely on. Capacity grows unboundedly here; callers (the ConnectionFSM) must
// enforce their own per-opcode maximum sizes before trusting a length field
// out of the wire, since this alone does not bound memory under adversarial
// input.
func (b *Buffer) EnsureFreeSpace() {
	if b.Remaining() > 0 {
		return
	}
	b.Normalize()
	if b.Remaining() > 0 {
		return
	}

	grown := make([]byte, len(b.buf)*2)
	copy(grown, b.buf[:b.writePos])
	b.buf = grown
}

// ReadCompleted advances readPos by n, marking n bytes of the unread region
// as consumed by the caller.
func (b *Buffer) ReadCompleted(n int) {
	b.readPos += n
	if b.readPos > b.writePos {
		b.readPos = b.writePos
	}
}

// WriteCompleted advances writePos by n, marking n bytes written into
// WriteSlice as now part of the unread region.
func (b *Buffer) WriteCompleted(n int) {
	b.writePos += n
	if b.writePos > len(b.buf) {
		b.writePos = len(b.buf)
	}
}

// Reset drops all staged data and returns the buffer to its initial cursors,
// retaining the backing array's current capacity.
func (b *Buffer) Reset() {
	b.readPos = 0
	b.writePos = 0
}
