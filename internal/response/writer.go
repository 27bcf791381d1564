package response

import "golang.org/x/sys/unix"

// WriteOnce issues a single gathered write of segs to fd.
func WriteOnce(fd int, segs [][]byte) (int, error) {
	if len(segs) == 0 {
		return 0, nil
	}
	return unix.Writev(fd, segs)
}

// Advance consumes n bytes from the head of segs, shortening or
// dropping leading segments as needed, and returns what remains. This
// is the fix for the confirmed bug in the original write(): its iovec
// was never advanced across a partial writev, so a retry after EAGAIN
// or a short write would retransmit bytes already on the wire. Calling
// Advance after every WriteOnce keeps the segment slice always pointing
// at exactly the unsent remainder.
func Advance(segs [][]byte, n int) [][]byte {
	for n > 0 && len(segs) > 0 {
		head := segs[0]
		if n < len(head) {
			segs[0] = head[n:]
			return segs
		}
		n -= len(head)
		segs = segs[1:]
	}
	return segs
}
