// Package idlesweep is an opt-in extension, absent from the original
// implementation, that closes connections that have gone idle for too
// long. spec.md's concurrency model explicitly has no notion of
// cancellation or timeouts; this package exists only because spec.md §5
// says implementations SHOULD consider adding one, and it stays
// disabled unless a caller constructs and starts it.
package idlesweep

import (
	"sync"
	"time"

	"github.com/jacobsa/timeutil"
)

// Sweeper tracks per-connection last-activity times and reports which
// ones have gone idle past a configured timeout. The idle comparison
// itself is done against a timeutil.Clock rather than time.Now, so
// tests can drive it deterministically with a timeutil.SimulatedClock
// instead of real sleeps.
type Sweeper struct {
	clock   timeutil.Clock
	timeout time.Duration

	mu   sync.Mutex
	last map[int]time.Time

	stop chan struct{}
}

// New returns a Sweeper that considers a connection idle once timeout
// has elapsed since its last Touch, as measured by clock.
func New(clock timeutil.Clock, timeout time.Duration) *Sweeper {
	return &Sweeper{
		clock:   clock,
		timeout: timeout,
		last:    make(map[int]time.Time),
		stop:    make(chan struct{}),
	}
}

// Touch records that fd made forward progress right now.
func (sw *Sweeper) Touch(fd int) {
	sw.mu.Lock()
	sw.last[fd] = sw.clock.Now()
	sw.mu.Unlock()
}

// Forget drops fd's bookkeeping; call it when a slot closes so the
// sweeper never reports a reused fd as idle from its previous
// connection's history.
func (sw *Sweeper) Forget(fd int) {
	sw.mu.Lock()
	delete(sw.last, fd)
	sw.mu.Unlock()
}

// Idle returns the fds that have been idle at least sw.timeout as of
// now.
func (sw *Sweeper) Idle() []int {
	now := sw.clock.Now()
	sw.mu.Lock()
	defer sw.mu.Unlock()

	var idle []int
	for fd, t := range sw.last {
		if now.Sub(t) >= sw.timeout {
			idle = append(idle, fd)
		}
	}
	return idle
}

// Run scans for idle connections every interval, invoking evict with
// the set found each time there is at least one, until Stop is called.
// It is meant to run on its own goroutine.
func (sw *Sweeper) Run(interval time.Duration, evict func([]int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if fds := sw.Idle(); len(fds) > 0 {
				evict(fds)
			}
		case <-sw.stop:
			return
		}
	}
}

// Stop terminates Run's loop.
func (sw *Sweeper) Stop() {
	close(sw.stop)
}
