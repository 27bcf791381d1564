// Package pool is the bounded FIFO worker pool that drains ready
// connections, the Go rendering of the original's threadpool<http_conn>.
package pool

import (
	"sync"

	"github.com/nwidger/reactord/internal/rsync"
	"github.com/nwidger/reactord/internal/slot"
)

// Handler processes one ready slot. It is invoked on a worker goroutine;
// the caller (reactord.Server) is responsible for re-arming the poller
// or closing the connection based on what the slot's state ends up
// being once Handler returns.
type Handler func(*slot.Slot)

// Pool is a fixed number of long-lived worker goroutines draining a
// mutex-guarded ready queue, signaled by a counting semaphore —
// threadpool<T>::append/run/worker translated directly into Go.
type Pool struct {
	mu      sync.Mutex
	queue   []*slot.Slot
	sema    *rsync.Sema
	max     int
	handler Handler
}

// New starts workers goroutines and returns a Pool whose ready queue
// holds at most maxRequests slots.
func New(workers, maxRequests int, handler Handler) *Pool {
	if workers < 1 {
		workers = 1
	}
	if maxRequests < 1 {
		maxRequests = 1
	}
	p := &Pool{
		sema:    rsync.NewSema(maxRequests),
		max:     maxRequests,
		handler: handler,
	}
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

// Submit appends s to the ready queue. It returns false if the queue is
// already at its capacity, treating maxRequests as an inclusive upper
// bound (size >= max, not size > max — the fix for the confirmed
// off-by-one in the original threadpool::append, where
// "m_workqueue.size() > m_max_requests" let the queue grow to
// max_requests+1 before rejecting).
func (p *Pool) Submit(s *slot.Slot) bool {
	p.mu.Lock()
	if len(p.queue) >= p.max {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, s)
	p.mu.Unlock()
	p.sema.Post()
	return true
}

func (p *Pool) run() {
	for {
		p.sema.Wait()
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			continue
		}
		s := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		p.handler(s)
	}
}
