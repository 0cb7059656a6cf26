package authserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFailCounterTripsAfterLimit(t *testing.T) {
	fc := NewFailCounter(3, time.Minute)
	require.False(t, fc.Banned("10.0.0.1"))

	fc.RecordFailure("10.0.0.1")
	fc.RecordFailure("10.0.0.1")
	require.False(t, fc.Banned("10.0.0.1"))

	fc.RecordFailure("10.0.0.1")
	require.True(t, fc.Banned("10.0.0.1"))
}

func TestFailCounterIsolatesBySourceIP(t *testing.T) {
	fc := NewFailCounter(1, time.Minute)
	fc.RecordFailure("10.0.0.1")
	require.True(t, fc.Banned("10.0.0.1"))
	require.False(t, fc.Banned("10.0.0.2"))
}

func TestFailCounterSuccessClearsCount(t *testing.T) {
	fc := NewFailCounter(3, time.Minute)
	fc.RecordFailure("10.0.0.1")
	fc.RecordFailure("10.0.0.1")
	fc.RecordSuccess("10.0.0.1")
	fc.RecordFailure("10.0.0.1")
	fc.RecordFailure("10.0.0.1")
	require.False(t, fc.Banned("10.0.0.1"), "count should have reset after success")
}

func TestFailCounterBanExpires(t *testing.T) {
	fc := NewFailCounter(1, time.Millisecond)
	fc.RecordFailure("10.0.0.1")
	require.True(t, fc.Banned("10.0.0.1"))

	time.Sleep(5 * time.Millisecond)
	require.False(t, fc.Banned("10.0.0.1"))
}

func TestFailCounterCleanExpiredDropsStaleEntries(t *testing.T) {
	fc := NewFailCounter(1, time.Millisecond)
	fc.RecordFailure("10.0.0.1")
	time.Sleep(5 * time.Millisecond)

	fc.CleanExpired()

	_, ok := fc.entries.Load("10.0.0.1")
	require.False(t, ok, "expired, zero-count entry should have been swept")
}
