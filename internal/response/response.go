// Package response builds fixed-order HTTP/1.1 status lines and headers
// into a caller-owned buffer and performs the gathered write of header
// plus mapped file body, the Go rendering of add_response/add_headers/
// process_write and write() from the original implementation.
package response

import "fmt"

// Status is a canned response status: code, reason phrase, and (for
// non-200 responses) the canonical plain-text body.
type Status struct {
	Code   int
	Reason string
	Body   string
}

var (
	StatusOK = Status{200, "OK", ""}

	StatusBadRequest = Status{400, "Bad Request",
		"Your request has bad syntax or is inherently impossible to satisfy.\n"}

	StatusForbidden = Status{403, "Forbidden",
		"You do not have permission to get file from this server.\n"}

	StatusNotFound = Status{404, "Not Found",
		"The requested file was not found on this server.\n"}

	StatusInternalError = Status{500, "Internal Error",
		"There was an unusual problem serving the requested file.\n"}
)

// Build formats the status line and fixed-order header block (and, for
// non-200 statuses, the canonical body) into buf starting at offset 0.
// It returns the number of bytes written and true on success, or
// (0, false) if the formatted response would not fit — the write buffer
// overflow case from spec.md §4.5, which aborts the response entirely.
func Build(buf []byte, st Status, contentLength int64, keepAlive bool) (int, bool) {
	conn := "close"
	if keepAlive {
		conn = "keep-alive"
	}
	s := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Length: %d\r\nContent-Type:text/html\r\nConnection: %s\r\n\r\n%s",
		st.Code, st.Reason, contentLength, conn, st.Body)

	if len(s) >= len(buf) {
		return 0, false
	}
	return copy(buf, s), true
}
