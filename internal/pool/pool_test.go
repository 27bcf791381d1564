package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/nwidger/reactord/internal/slot"
)

func TestPoolDrainsInFIFOOrder(t *testing.T) {
	var mu sync.Mutex
	var order []int

	done := make(chan struct{}, 10)
	p := New(1, 10, func(s *slot.Slot) {
		mu.Lock()
		order = append(order, s.FD)
		mu.Unlock()
		done <- struct{}{}
	})

	for i := 0; i < 5; i++ {
		if !p.Submit(&slot.Slot{FD: i}) {
			t.Fatalf("Submit(%d): want true", i)
		}
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for worker to drain queue")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, fd := range order {
		if fd != i {
			t.Errorf("order[%d] = %d, want %d (FIFO order violated: %v)", i, fd, i, order)
		}
	}
}

func TestSubmitRejectsAtInclusiveCapacity(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	p := New(1, 2, func(s *slot.Slot) {
		started <- struct{}{}
		<-block // keep the one worker busy so the queue actually fills
	})
	defer close(block)

	if !p.Submit(&slot.Slot{FD: 1}) {
		t.Fatal("Submit(1): want true")
	}
	<-started // the only worker is now blocked inside the handler

	if !p.Submit(&slot.Slot{FD: 2}) {
		t.Fatal("Submit(2): want true")
	}
	if !p.Submit(&slot.Slot{FD: 3}) {
		t.Fatal("Submit(3): want true")
	}
	if p.Submit(&slot.Slot{FD: 4}) {
		t.Fatal("Submit at capacity: want false (max_requests is an inclusive bound)")
	}
}
