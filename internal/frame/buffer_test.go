package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	b := New(16)
	n := copy(b.WriteSlice(), []byte("hello"))
	b.WriteCompleted(n)

	require.Equal(t, "hello", string(b.Unread()))
	b.ReadCompleted(5)
	require.Equal(t, 0, b.Active())
}

func TestNormalizeReclaimsSpace(t *testing.T) {
	b := &Buffer{buf: make([]byte, 8)}
	n := copy(b.WriteSlice(), []byte("12345678"))
	b.WriteCompleted(n)
	b.ReadCompleted(4)

	require.Equal(t, 0, b.Remaining())
	b.Normalize()
	require.Equal(t, 4, b.Remaining())
	require.Equal(t, "5678", string(b.Unread()))
}

func TestEnsureFreeSpaceGrows(t *testing.T) {
	b := &Buffer{buf: make([]byte, 4)}
	n := copy(b.WriteSlice(), []byte("abcd"))
	b.WriteCompleted(n)

	require.Equal(t, 0, b.Remaining())
	b.EnsureFreeSpace()
	require.Greater(t, b.Remaining(), 0)
	require.Equal(t, "abcd", string(b.Unread()))
}

func TestEnsureFreeSpacePrefersNormalizeOverGrowth(t *testing.T) {
	b := &Buffer{buf: make([]byte, 8)}
	n := copy(b.WriteSlice(), []byte("12345678"))
	b.WriteCompleted(n)
	b.ReadCompleted(8)

	b.EnsureFreeSpace()
	require.Equal(t, 8, b.Remaining())
}

// TestPartialWritesPreserveUnreadBytes simulates the scenario spec.md §8
// calls out: any interleaving of partial writes and partial reads must leave
// the unread region pointing at the same logical bytes after Normalize.
func TestPartialWritesPreserveUnreadBytes(t *testing.T) {
	b := New(4)

	write := func(chunk string) {
		for b.Remaining() < len(chunk) {
			b.EnsureFreeSpace()
		}
		n := copy(b.WriteSlice(), chunk)
		b.WriteCompleted(n)
	}

	write("AB")
	b.ReadCompleted(1)
	write("CDEF")
	b.Normalize()
	require.Equal(t, "BCDEF", string(b.Unread()))

	b.ReadCompleted(3)
	b.Normalize()
	require.Equal(t, "EF", string(b.Unread()))
}

func TestResetClearsCursorsKeepsCapacity(t *testing.T) {
	b := New(16)
	n := copy(b.WriteSlice(), []byte("data"))
	b.WriteCompleted(n)
	cap := len(b.buf)

	b.Reset()
	require.Equal(t, 0, b.Active())
	require.Equal(t, cap, len(b.buf))
}

func TestPoolRecyclesAndResets(t *testing.T) {
	p := NewPool(16)
	b := p.Get()
	n := copy(b.WriteSlice(), []byte("leftover"))
	b.WriteCompleted(n)
	p.Put(b)

	b2 := p.Get()
	require.Equal(t, 0, b2.Active())
}
