// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reactord

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jacobsa/timeutil"

	"github.com/nwidger/reactord/internal/epoll"
	"github.com/nwidger/reactord/internal/idlesweep"
	"github.com/nwidger/reactord/internal/pool"
	"github.com/nwidger/reactord/internal/resolve"
	"github.com/nwidger/reactord/internal/slot"
)

// Config controls how a Server is constructed.
type Config struct {
	// Port to listen on.
	Port int

	// DocRoot is the directory static files are served from.
	DocRoot string

	// Workers is the number of long-lived worker goroutines draining the
	// ready queue. Defaults to 8 if zero.
	Workers int

	// MaxRequests bounds the ready queue; Submit rejects once the queue
	// holds this many slots. Defaults to 10000 if zero.
	MaxRequests int

	// IdleTimeout, if nonzero, enables the opt-in idle-connection sweep
	// (internal/idlesweep): connections with no read/write activity for
	// this long are closed.
	IdleTimeout time.Duration

	// Hardened switches target resolution to resolve.SafeResolve, which
	// rejects path-traversal attempts, instead of the default
	// resolve.Resolve, which preserves the original implementation's
	// documented traversal risk.
	Hardened bool

	// Verbose enables per-event debug logging.
	Verbose bool
}

const (
	defaultWorkers     = 8
	defaultMaxRequests = 10000
	listenBacklog      = 5
)

// Server is the reactor: it owns the listening socket, the epoll
// descriptor, the connection slot table, and the worker pool.
type Server struct {
	cfg      Config
	poller   *epoll.Poller
	listenFD int
	table    *slot.Table
	pool     *pool.Pool
	clients  int
	loggers  loggers
	resolve  resolve.Func
	sweep    *idlesweep.Sweeper
}

// New constructs a Server listening on cfg.Port. It does not start
// serving requests until Run is called.
func New(cfg Config) (*Server, error) {
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaultMaxRequests
	}

	listenFD, err := listen(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	poller, err := epoll.New()
	if err != nil {
		unix.Close(listenFD)
		return nil, fmt.Errorf("epoll.New: %w", err)
	}
	if err := poller.AddListener(listenFD); err != nil {
		poller.Close()
		unix.Close(listenFD)
		return nil, fmt.Errorf("AddListener: %w", err)
	}

	resolveFn := resolve.Resolve
	if cfg.Hardened {
		resolveFn = resolve.SafeResolve
	}

	s := &Server{
		cfg:      cfg,
		poller:   poller,
		listenFD: listenFD,
		table:    slot.NewTable(slot.MaxFD),
		loggers:  newLoggers(cfg.Verbose),
		resolve:  resolveFn,
	}
	s.pool = pool.New(cfg.Workers, cfg.MaxRequests, s.processSlot)

	if cfg.IdleTimeout > 0 {
		s.sweep = idlesweep.New(timeutil.RealClock(), cfg.IdleTimeout)
		go s.sweep.Run(cfg.IdleTimeout/4+time.Second, s.evictIdle)
	}

	return s, nil
}

// listen creates, binds, and starts listening on a non-blocking IPv4
// TCP socket, the Go rendering of main.cpp's socket/setsockopt/bind/
// listen sequence (SO_REUSEADDR, backlog 5).
func listen(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}

	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// Run blocks, driving the reactor's epoll_wait loop until an
// unrecoverable error occurs.
func (s *Server) Run() error {
	events := make([]unix.EpollEvent, 256)
	for {
		n, err := s.poller.Wait(events)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)

			switch {
			case fd == s.listenFD:
				s.acceptAll()
			case ev.Events&(unix.EPOLLHUP|unix.EPOLLERR|unix.EPOLLRDHUP) != 0:
				s.closeSlot(fd)
			case ev.Events&unix.EPOLLIN != 0:
				s.handleReadable(fd)
			case ev.Events&unix.EPOLLOUT != 0:
				s.handleWritable(fd)
			}
		}
	}
}

// acceptAll drains the listen backlog, initializing a slot for every
// accepted connection and registering it with the poller.
func (s *Server) acceptAll() {
	for {
		fd, sa, err := unix.Accept4(s.listenFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			s.loggers.err.Printf("accept: %v", err)
			return
		}

		if s.clients >= slot.MaxFD || fd >= slot.MaxFD {
			unix.Close(fd)
			continue
		}

		sl := &slot.Slot{}
		sl.Init(fd, sa, s.cfg.DocRoot, s.resolve)
		s.table.Set(fd, sl)

		if err := s.poller.AddConn(fd); err != nil {
			s.loggers.err.Printf("AddConn(%d): %v", fd, err)
			unix.Close(fd)
			s.table.Set(fd, nil)
			continue
		}

		s.clients++
		if s.sweep != nil {
			s.sweep.Touch(fd)
		}
		s.loggers.debug.Printf("accepted fd=%d", fd)
	}
}

// handleReadable reads whatever is available on fd and, if a full read
// pass succeeded, hands the slot to the worker pool.
func (s *Server) handleReadable(fd int) {
	sl := s.table.Get(fd)
	if sl == nil {
		return
	}
	if s.sweep != nil {
		s.sweep.Touch(fd)
	}

	if !sl.Read() {
		s.closeSlot(fd)
		return
	}
	if !s.pool.Submit(sl) {
		s.loggers.err.Printf("ready queue full, closing fd=%d", fd)
		s.closeSlot(fd)
	}
}

// processSlot is the worker pool's handler: it parses as much of the
// request as is buffered and, once a terminal outcome is known, builds
// the response. It never performs the actual socket write — that
// happens back on the reactor when the fd becomes writable — it only
// decides which direction to re-arm for.
func (s *Server) processSlot(sl *slot.Slot) {
	outcome := sl.ProcessRead()
	if outcome == slot.NoRequest {
		if err := s.poller.Rearm(sl.FD, unix.EPOLLIN); err != nil {
			s.loggers.err.Printf("rearm read fd=%d: %v", sl.FD, err)
		}
		return
	}

	if !sl.BuildResponse(outcome) {
		s.closeSlot(sl.FD)
		return
	}
	if err := s.poller.Rearm(sl.FD, unix.EPOLLOUT); err != nil {
		s.loggers.err.Printf("rearm write fd=%d: %v", sl.FD, err)
	}
}

// handleWritable performs one gathered-write pass and re-arms or closes
// the connection depending on how it went.
func (s *Server) handleWritable(fd int) {
	sl := s.table.Get(fd)
	if sl == nil {
		return
	}
	if s.sweep != nil {
		s.sweep.Touch(fd)
	}

	ok := sl.Write()
	if sl.Completed {
		s.loggers.access.Printf("%s %s %d %d keep-alive=%t",
			sl.LastMethod, sl.LastURL, sl.LastStatus, sl.LastBytes, sl.LastKeepAlive)
	}
	if !ok {
		s.closeSlot(fd)
		return
	}

	base := uint32(unix.EPOLLIN)
	if sl.WantWrite {
		base = unix.EPOLLOUT
	}
	if err := s.poller.Rearm(fd, base); err != nil {
		s.loggers.err.Printf("rearm fd=%d: %v", fd, err)
	}
}

// closeSlot tears down fd's connection: deregisters it from the
// poller, closes the descriptor, releases the slot, and decrements the
// client count. It is idempotent.
func (s *Server) closeSlot(fd int) {
	sl := s.table.Get(fd)
	if sl == nil || sl.IsClosed() {
		return
	}
	s.poller.Remove(fd)
	unix.Close(fd)
	sl.Close()
	s.table.Set(fd, nil)
	s.clients--
	if s.sweep != nil {
		s.sweep.Forget(fd)
	}
	s.loggers.debug.Printf("closed fd=%d", fd)
}

// evictIdle is the idlesweep callback: it closes every connection
// reported idle past the configured timeout.
func (s *Server) evictIdle(fds []int) {
	for _, fd := range fds {
		s.loggers.debug.Printf("idle timeout fd=%d", fd)
		s.closeSlot(fd)
	}
}
