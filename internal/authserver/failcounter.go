package authserver

import (
	"sync"
	"time"
)

// failEntry tracks one source IP's consecutive proof failures and, once
// tripped, the time its lockout expires.
type failEntry struct {
	mu          sync.Mutex
	count       int
	bannedUntil time.Time
}

// FailCounter is an in-memory, per-source-IP lockout, adapted from the
// teacher's SessionManager (sync.Map keyed by identity, with a TTL sweep)
// but keyed by IP rather than account — spec.md §9's proof-failure policy
// is deliberately not keyed by account, to avoid letting a failed-login
// counter double as an account-enumeration side channel.
type FailCounter struct {
	entries     sync.Map // map[string]*failEntry
	tryLimit    int
	banDuration time.Duration
}

// NewFailCounter creates a FailCounter that bans a source IP for
// banDuration after tryLimit consecutive proof failures.
func NewFailCounter(tryLimit int, banDuration time.Duration) *FailCounter {
	return &FailCounter{tryLimit: tryLimit, banDuration: banDuration}
}

func (f *FailCounter) entry(ip string) *failEntry {
	v, _ := f.entries.LoadOrStore(ip, &failEntry{})
	return v.(*failEntry)
}

// Banned reports whether ip is currently locked out.
func (f *FailCounter) Banned(ip string) bool {
	v, ok := f.entries.Load(ip)
	if !ok {
		return false
	}
	e := v.(*failEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.bannedUntil.IsZero() && time.Now().Before(e.bannedUntil)
}

// RecordFailure registers one proof failure for ip, tripping the lockout
// once the count reaches tryLimit.
func (f *FailCounter) RecordFailure(ip string) {
	e := f.entry(ip)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.count++
	if e.count >= f.tryLimit {
		e.bannedUntil = time.Now().Add(f.banDuration)
		e.count = 0
	}
}

// RecordSuccess clears ip's failure count. A successful proof ends the
// connection's ability to keep retrying, so there's nothing left to count,
// but an account that eventually gets it right shouldn't stay flagged from
// stray earlier typos.
func (f *FailCounter) RecordSuccess(ip string) {
	v, ok := f.entries.Load(ip)
	if !ok {
		return
	}
	e := v.(*failEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.count = 0
}

// CleanExpired drops entries whose lockout (if any) has expired and which
// have no pending failure count, bounding long-term memory growth.
func (f *FailCounter) CleanExpired() {
	now := time.Now()
	f.entries.Range(func(key, value any) bool {
		e := value.(*failEntry)
		e.mu.Lock()
		expired := e.count == 0 && (e.bannedUntil.IsZero() || now.After(e.bannedUntil))
		e.mu.Unlock()
		if expired {
			f.entries.Delete(key)
		}
		return true
	})
}
