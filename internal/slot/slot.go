// Package slot holds the process-wide connection slot table and the
// per-connection object that owns a socket's buffers, parse state, and
// in-flight response. It is the Go rendering of the original's
// http_conn array (http_conn* users = new http_conn[MAX_FD]) and the
// teacher's per-fd Connection object (connection.go).
package slot

import (
	"golang.org/x/sys/unix"

	"github.com/nwidger/reactord/internal/httpconn"
	"github.com/nwidger/reactord/internal/resolve"
	"github.com/nwidger/reactord/internal/response"
)

const (
	// ReadBufSize is the fixed per-connection read buffer size.
	ReadBufSize = 2048
	// WriteBufSize is the fixed per-connection header write buffer size.
	WriteBufSize = 1024
	// FilePathSize bounds the resolved file path buffer.
	FilePathSize = 200
	// MaxFD bounds the number of concurrently open connections.
	MaxFD = 65535
)

// Outcome re-exports httpconn.Outcome so callers outside this package
// never need to import httpconn directly just to inspect a Slot.
type Outcome = httpconn.Outcome

const (
	NoRequest        = httpconn.NoRequest
	BadRequest       = httpconn.BadRequest
	NoResource       = httpconn.NoResource
	ForbiddenRequest = httpconn.ForbiddenRequest
	FileRequest      = httpconn.FileRequest
	InternalError    = httpconn.InternalError
)

// Slot is the per-connection state: the fixed read and write buffers,
// the request parser, the resolved/mapped file, and gathered-write
// bookkeeping. A Slot is reused across keep-alive requests on the same
// connection via Reset, and across connections (by fd) via Init.
type Slot struct {
	FD   int
	Peer unix.Sockaddr

	ReadBuf [ReadBufSize]byte
	ReadIdx int

	conn httpconn.Conn

	FilePath    [FilePathSize]byte
	FilePathLen int
	FileSize    int64
	Mapped      []byte

	WriteBuf [WriteBufSize]byte
	WriteIdx int

	segments    [2][]byte
	pending     [][]byte
	BytesToSend int
	BytesSent   int
	WantWrite   bool

	// Completed, LastMethod, LastURL, LastStatus, LastKeepAlive, and
	// LastBytes are a snapshot taken by Write at the moment a response
	// finishes sending, so a caller can log it after Write returns even
	// on the keep-alive path, where Write has already called Reset on
	// everything else by the time it returns. Completed is cleared at
	// the top of every Write call and only set true on the two
	// full-response-sent branches, so it never reports a partial or
	// EAGAIN-interrupted pass as done.
	Completed     bool
	LastMethod    string
	LastURL       string
	LastStatus    int
	LastKeepAlive bool
	LastBytes     int

	DocRoot string
	Resolve resolve.Func
}

// Init prepares a freshly accepted connection's slot. docRoot and
// resolveFn are fixed for the slot's lifetime; everything else is
// cleared by Reset.
func (s *Slot) Init(fd int, peer unix.Sockaddr, docRoot string, resolveFn resolve.Func) {
	s.FD = fd
	s.Peer = peer
	s.DocRoot = docRoot
	s.Resolve = resolveFn
	s.Reset()
}

// Reset clears all per-request state (buffers, parser, response) but
// leaves FD, Peer, DocRoot, and Resolve untouched, so it can be used
// both at Init time and between keep-alive requests on the same
// connection.
func (s *Slot) Reset() {
	s.ReadBuf = [ReadBufSize]byte{}
	s.ReadIdx = 0
	s.conn.Reset()

	s.FilePathLen = 0
	s.FileSize = 0
	s.Mapped = nil

	s.WriteBuf = [WriteBufSize]byte{}
	s.WriteIdx = 0
	s.segments[0] = nil
	s.segments[1] = nil
	s.pending = nil
	s.BytesToSend = 0
	s.BytesSent = 0
	s.WantWrite = false
}

// IsClosed reports whether the slot has been closed and not yet
// reinitialized.
func (s *Slot) IsClosed() bool {
	return s.FD == -1
}

// Close releases the slot's mapped file region (if any) and marks it
// closed. It is idempotent, mirroring close_conn's m_sockfd != -1
// guard. It does not touch the fd itself or the multiplexor/slot-table
// registration — those are the server's responsibility, since Slot has
// no reference to the poller or the table it lives in.
func (s *Slot) Close() {
	if s.IsClosed() {
		return
	}
	resolve.Release(s.Mapped)
	s.Mapped = nil
	s.FD = -1
}

// Read performs one non-blocking read pass, looping until EAGAIN. It
// returns false if the buffer was already full on entry, the peer
// closed the connection, or a non-EAGAIN error occurred — in all three
// cases the caller should close the slot.
func (s *Slot) Read() bool {
	if s.ReadIdx >= len(s.ReadBuf) {
		return false
	}
	for {
		n, err := unix.Read(s.FD, s.ReadBuf[s.ReadIdx:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return true
			}
			return false
		}
		if n == 0 {
			return false
		}
		s.ReadIdx += n
		if s.ReadIdx >= len(s.ReadBuf) {
			return true
		}
	}
}

// ProcessRead feeds the buffered bytes to the request parser and, once a
// full request is available, resolves its target. The returned Outcome
// is one of NoRequest (more data needed), BadRequest, NoResource,
// ForbiddenRequest, FileRequest, or InternalError — never the
// package-internal httpconn.GetRequest, which is consumed here.
func (s *Slot) ProcessRead() Outcome {
	outcome := s.conn.Feed(s.ReadBuf[:], s.ReadIdx)
	if outcome != httpconn.GetRequest {
		return outcome
	}
	return s.resolveTarget()
}

func (s *Slot) resolveTarget() Outcome {
	res, err := s.Resolve(s.DocRoot, s.conn.Req.URL, s.FilePath[:])
	if err != nil {
		return InternalError
	}
	switch res.Code {
	case resolve.Found:
		s.Mapped = res.Mapped
		s.FileSize = res.Size
		s.FilePathLen = len(res.Path)
		return FileRequest
	case resolve.NotFound:
		return NoResource
	case resolve.Forbidden:
		return ForbiddenRequest
	case resolve.IsDirectory:
		return BadRequest
	default:
		return InternalError
	}
}

// statusFor maps a terminal Outcome to the canned response status to
// send, and whether keep-alive is honored for it. Keep-alive is never
// honored on a bad request, regardless of what the client asked for.
func (s *Slot) statusFor(outcome Outcome) (response.Status, bool) {
	switch outcome {
	case FileRequest:
		return response.StatusOK, s.conn.Req.KeepAlive
	case ForbiddenRequest:
		return response.StatusForbidden, s.conn.Req.KeepAlive
	case NoResource:
		return response.StatusNotFound, s.conn.Req.KeepAlive
	case InternalError:
		return response.StatusInternalError, s.conn.Req.KeepAlive
	default: // BadRequest and any unreachable parser state
		return response.StatusBadRequest, false
	}
}

// BuildResponse formats the status line, headers, and (for FileRequest)
// sets up the two-segment gathered write of header-block-plus-mapped-
// file. It returns false if the formatted headers overflow the write
// buffer, in which case the caller must close the connection without
// attempting to write anything.
func (s *Slot) BuildResponse(outcome Outcome) bool {
	st, keepAlive := s.statusFor(outcome)

	contentLength := int64(len(st.Body))
	if outcome == FileRequest {
		contentLength = s.FileSize
	}

	n, ok := response.Build(s.WriteBuf[:], st, contentLength, keepAlive)
	if !ok {
		return false
	}

	s.WriteIdx = n
	s.conn.Req.KeepAlive = keepAlive
	s.LastMethod = string(s.conn.Req.Method)
	s.LastURL = string(s.conn.Req.URL)
	s.LastStatus = st.Code
	s.segments[0] = s.WriteBuf[:n]
	if outcome == FileRequest {
		s.segments[1] = s.Mapped
		s.BytesToSend = n + int(s.FileSize)
	} else {
		s.segments[1] = nil
		s.BytesToSend = n
	}
	s.BytesSent = 0
	s.pending = nil
	return true
}

func (s *Slot) liveSegments() [][]byte {
	segs := make([][]byte, 0, 2)
	if len(s.segments[0]) > 0 {
		segs = append(segs, s.segments[0])
	}
	if len(s.segments[1]) > 0 {
		segs = append(segs, s.segments[1])
	}
	return segs
}

// Write performs one non-blocking gathered-write pass. It returns false
// if the connection should be closed (a write error, or the response is
// complete and keep-alive was not requested). On true, check WantWrite:
// if set, the response is still in flight and the reactor should re-arm
// for EPOLLOUT; if clear, the response completed and the slot has reset
// itself for a new keep-alive request, so the reactor should re-arm for
// EPOLLIN.
//
// On EAGAIN this returns immediately (with WantWrite set) rather than
// spinning, since I/O in a slot must never block the reactor or a
// worker — unlike the original, which busy-loops on EAGAIN inside a
// single write() call. The saved segment offsets (via pending) mean the
// next call resumes exactly where this one left off, never
// retransmitting already-sent bytes.
//
// Write also snapshots the completed response into Completed/LastMethod/
// LastURL/LastStatus/LastKeepAlive/LastBytes the moment it finishes
// sending, before any keep-alive Reset, so a caller can log the access
// line after Write returns regardless of which branch was taken.
// Completed is cleared at the start of every call and only set on the
// two full-send branches below, so a partial or EAGAIN-interrupted pass
// never reports as done.
func (s *Slot) Write() bool {
	s.Completed = false
	segs := s.pending
	if segs == nil {
		segs = s.liveSegments()
	}

	for len(segs) > 0 {
		n, err := response.WriteOnce(s.FD, segs)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				s.pending = segs
				s.WantWrite = true
				return true
			}
			resolve.Release(s.Mapped)
			s.Mapped = nil
			return false
		}
		s.BytesSent += n
		segs = response.Advance(segs, n)
	}

	s.pending = nil
	resolve.Release(s.Mapped)
	s.Mapped = nil

	s.Completed = true
	s.LastKeepAlive = s.conn.Req.KeepAlive
	s.LastBytes = s.BytesSent

	if s.conn.Req.KeepAlive {
		s.Reset()
		s.WantWrite = false
		return true
	}
	s.WantWrite = false
	return false
}
