// Package epoll wraps the raw Linux epoll syscalls used by the reactor.
// Registration is split into two explicit entry points, AddListener and
// AddConn, so that the one-shot-on-add behavior that the original
// implementation almost certainly intended (its addfd wrote
// "event.events | EPOLLONESHOT" as a bare expression, never assigning the
// result) cannot be skipped by a caller that just wants "add a socket".
package epoll

import "golang.org/x/sys/unix"

// connReadEvents are the base events a freshly accepted connection is
// always interested in: readable data, and the half-closed notification.
const connReadEvents = unix.EPOLLIN | unix.EPOLLRDHUP

// Poller owns a single epoll file descriptor.
type Poller struct {
	fd int
}

// New creates a new epoll instance.
func New() (*Poller, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &Poller{fd: fd}, nil
}

// Close releases the epoll descriptor.
func (p *Poller) Close() error {
	return unix.Close(p.fd)
}

// AddListener registers fd (the listening socket) in level-triggered
// read mode. It is never edge-triggered and never one-shot: a burst of
// pending connections must keep waking the reactor until fully drained.
func (p *Poller) AddListener(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// AddConn registers fd (a freshly accepted connection) edge-triggered
// and one-shot, initially armed for read.
func (p *Poller) AddConn(fd int) error {
	ev := unix.EpollEvent{
		Events: connReadEvents | unix.EPOLLET | unix.EPOLLONESHOT,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// Rearm re-registers fd one-shot for the given base event (EPOLLIN or
// EPOLLOUT), called after a worker or the reactor itself has finished
// handling the previous event on that fd.
func (p *Poller) Rearm(fd int, base uint32) error {
	ev := unix.EpollEvent{
		Events: base | unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// Remove deregisters fd. It is safe to call even if fd was already
// removed by the kernel (e.g. on close); the error, if any, is for the
// caller to log and ignore.
func (p *Poller) Remove(fd int) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks until at least one registered fd is ready, filling events
// and returning the number of ready entries.
func (p *Poller) Wait(events []unix.EpollEvent) (int, error) {
	return unix.EpollWait(p.fd, events, -1)
}
