package throttle

import (
	"sync"
	"time"
)

// Sweeper periodically calls Cleanup on a set of limiters. It owns its
// own goroutine with an explicit Start/Stop lifecycle so tests can run
// without background activity.
type Sweeper struct {
	interval time.Duration
	limiters []*Limiter

	mu      sync.Mutex
	done    chan struct{}
	stopped sync.WaitGroup
	running bool
}

// NewSweeper creates a Sweeper over the given limiters. A non-positive
// interval defaults to one minute.
func NewSweeper(interval time.Duration, limiters ...*Limiter) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		interval: interval,
		limiters: limiters,
	}
}

// Start launches the background sweep loop. Calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped.Add(1)

	go s.run(s.done)
}

func (s *Sweeper) run(done chan struct{}) {
	defer s.stopped.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, l := range s.limiters {
				l.Cleanup()
			}
		case <-done:
			return
		}
	}
}

// Stop halts the sweep loop and waits for it to exit. Safe to call on
// a sweeper that was never started.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.stopped.Wait()
}
