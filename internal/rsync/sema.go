// Package rsync provides the small synchronization primitives shared by
// the ready queue and the worker pool: a counting semaphore to pair with
// a plain sync.Mutex, mirroring the mutex+semaphore pairing in the
// original threadpool implementation.
package rsync

// Sema is a counting semaphore backed by a buffered channel. Post never
// blocks as long as the channel's capacity is not exceeded; callers size
// the capacity to the maximum number of outstanding posts they can ever
// issue without an intervening Wait.
type Sema struct {
	c chan struct{}
}

// NewSema returns a semaphore with the given capacity.
func NewSema(capacity int) *Sema {
	if capacity < 1 {
		capacity = 1
	}
	return &Sema{c: make(chan struct{}, capacity)}
}

// Post increments the semaphore.
func (s *Sema) Post() {
	s.c <- struct{}{}
}

// Wait blocks until the semaphore is positive, then decrements it.
func (s *Sema) Wait() {
	<-s.c
}
