package throttle

import (
	"sync"
	"time"
)

// Policy describes one fixed-window budget: at most MaxAttempts calls
// per Window for a given key.
type Policy struct {
	Name        string
	MaxAttempts int
	Window      time.Duration
}

// Preconfigured policies matching the call sites that ship with the
// gateway. Callers may define their own; nothing here is global state.
var (
	// LoginPolicy bounds credential-check attempts per username+origin.
	LoginPolicy = Policy{Name: "login", MaxAttempts: 5, Window: 15 * time.Minute}
	// APIPolicy bounds generic API calls per caller.
	APIPolicy = Policy{Name: "api", MaxAttempts: 100, Window: time.Minute}
	// ResetPolicy bounds password-reset requests per email.
	ResetPolicy = Policy{Name: "password_reset", MaxAttempts: 3, Window: time.Hour}
)

type record struct {
	count   int
	resetAt time.Time
}

// Limiter is a process-local fixed-window attempt counter. State lives
// in a mutex-guarded map and is not shared across instances or
// restarts; for multi-instance deployments use a shared store instead.
//
// Check is atomic with respect to racing callers: two goroutines
// cannot both observe count < max and both proceed.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record
	policy  Policy
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the limiter's time source. Tests use this to
// advance the window deterministically.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter enforcing the given policy.
func New(policy Policy, opts ...Option) *Limiter {
	l := &Limiter{
		records: make(map[string]*record),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the policy this limiter enforces.
func (l *Limiter) Policy() Policy {
	return l.policy
}

// Check consumes one attempt for key under the limiter's own policy.
func (l *Limiter) Check(key string) bool {
	return l.CheckN(key, l.policy.MaxAttempts, l.policy.Window)
}

// CheckN consumes one attempt for key under an explicit budget.
//
// A missing or expired record starts a fresh window with count 1.
// Once the budget is exhausted CheckN returns false without touching
// the record: the window does not extend on denied attempts, so the
// key becomes eligible again when the original window elapses. This
// is a fixed window, not a sliding one: a burst of maxAttempts calls
// straddling a window boundary is allowed and expected.
func (l *Limiter) CheckN(key string, maxAttempts int, window time.Duration) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		l.records[key] = &record{count: 1, resetAt: now.Add(window)}
		return true
	}

	if rec.count >= maxAttempts {
		return false
	}

	rec.count++
	return true
}

// Remaining reports how many attempts are left for key. A missing or
// expired record reports the full budget.
func (l *Limiter) Remaining(key string) int {
	return l.RemainingN(key, l.policy.MaxAttempts)
}

// RemainingN is Remaining with an explicit budget.
func (l *Limiter) RemainingN(key string, maxAttempts int) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		return maxAttempts
	}

	remaining := maxAttempts - rec.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TimeUntilReset reports how long until key's window resets, or 0 if
// no live record exists.
func (l *Limiter) TimeUntilReset(key string) time.Duration {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		return 0
	}
	return rec.resetAt.Sub(now)
}

// Reset deletes key's record, restoring the full budget immediately.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, key)
}

// Cleanup removes every record whose window has passed and returns
// the number removed. Intended to run from a Sweeper, not on the hot
// path; Check already replaces expired records lazily.
func (l *Limiter) Cleanup() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.records {
		if now.After(rec.resetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys, live or expired.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
