package throttle

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually-advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheck_BudgetExhaustion(t *testing.T) {
	clock := newFakeClock()
	l := New(LoginPolicy, WithClock(clock.Now))

	for i := 1; i <= 5; i++ {
		if !l.Check("alice:1.2.3.4") {
			t.Fatalf("attempt %d: expected allowed", i)
		}
	}

	if l.Check("alice:1.2.3.4") {
		t.Fatal("attempt 6: expected denied")
	}
	if got := l.Remaining("alice:1.2.3.4"); got != 0 {
		t.Fatalf("Remaining = %d, want 0", got)
	}
}

func TestCheck_ResetRestoresBudget(t *testing.T) {
	clock := newFakeClock()
	l := New(LoginPolicy, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		l.Check("k")
	}
	if l.Check("k") {
		t.Fatal("expected denied after exhausting budget")
	}

	l.Reset("k")

	if !l.Check("k") {
		t.Fatal("expected allowed after Reset")
	}
	if got := l.Remaining("k"); got != 4 {
		t.Fatalf("Remaining after reset+check = %d, want 4", got)
	}
}

func TestCheck_WindowElapseRestartsCounter(t *testing.T) {
	clock := newFakeClock()
	l := New(LoginPolicy, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		l.Check("k")
	}
	if l.Check("k") {
		t.Fatal("expected denied inside window")
	}

	clock.Advance(15*time.Minute + time.Second)

	if !l.Check("k") {
		t.Fatal("expected allowed after window elapsed")
	}
	// Fresh window restarts at count 1.
	if got := l.Remaining("k"); got != 4 {
		t.Fatalf("Remaining in fresh window = %d, want 4", got)
	}
}

func TestCheck_DeniedAttemptDoesNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(Policy{Name: "test", MaxAttempts: 2, Window: time.Minute}, WithClock(clock.Now))

	l.Check("k")
	l.Check("k")

	// Hammer the denied key for most of the window.
	clock.Advance(55 * time.Second)
	if l.Check("k") {
		t.Fatal("expected denied")
	}

	// The original window ends at +60s regardless of denied attempts.
	clock.Advance(6 * time.Second)
	if !l.Check("k") {
		t.Fatal("expected allowed once the original window elapsed")
	}
}

func TestTimeUntilReset(t *testing.T) {
	clock := newFakeClock()
	l := New(LoginPolicy, WithClock(clock.Now))

	if got := l.TimeUntilReset("k"); got != 0 {
		t.Fatalf("TimeUntilReset with no record = %v, want 0", got)
	}

	l.Check("k")
	if got := l.TimeUntilReset("k"); got != 15*time.Minute {
		t.Fatalf("TimeUntilReset = %v, want 15m", got)
	}

	clock.Advance(10 * time.Minute)
	if got := l.TimeUntilReset("k"); got != 5*time.Minute {
		t.Fatalf("TimeUntilReset after 10m = %v, want 5m", got)
	}
}

func TestCleanup_RemovesOnlyExpiredWindows(t *testing.T) {
	clock := newFakeClock()
	l := New(Policy{Name: "test", MaxAttempts: 3, Window: time.Minute}, WithClock(clock.Now))

	l.Check("old")
	clock.Advance(2 * time.Minute)
	l.Check("fresh")

	if removed := l.Cleanup(); removed != 1 {
		t.Fatalf("Cleanup removed %d, want 1", removed)
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("Len after cleanup = %d, want 1", got)
	}
	// The fresh key's count survives the sweep.
	if got := l.Remaining("fresh"); got != 2 {
		t.Fatalf("Remaining for fresh key = %d, want 2", got)
	}
}

func TestCheck_ConcurrentCallersNeverExceedQuota(t *testing.T) {
	l := New(Policy{Name: "test", MaxAttempts: 50, Window: time.Minute})

	const goroutines = 16
	const perGoroutine = 20

	var allowed int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := 0
			for i := 0; i < perGoroutine; i++ {
				if l.CheckN("shared", 50, time.Minute) {
					local++
				}
			}
			mu.Lock()
			allowed += int64(local)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Fatalf("allowed %d concurrent attempts, want exactly 50", allowed)
	}
}

func TestSweeper_StartStopLifecycle(t *testing.T) {
	clock := newFakeClock()
	l := New(Policy{Name: "test", MaxAttempts: 1, Window: time.Millisecond}, WithClock(clock.Now))

	s := NewSweeper(5*time.Millisecond, l)
	s.Start()
	s.Start() // idempotent

	l.Check("k")
	clock.Advance(time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for l.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if l.Len() != 0 {
		t.Fatal("sweeper did not reap expired record")
	}

	s.Stop()
	s.Stop() // idempotent, including after stop
}

func TestPolicies_PerKeyIsolation(t *testing.T) {
	l := New(Policy{Name: "test", MaxAttempts: 1, Window: time.Minute})

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("user-%d", i)
		if !l.Check(key) {
			t.Fatalf("first attempt for %s denied", key)
		}
		if l.Check(key) {
			t.Fatalf("second attempt for %s allowed", key)
		}
	}
}
