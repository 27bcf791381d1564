package slot

// Table is the process-wide, fd-indexed connection slot array, the Go
// rendering of "http_conn* users = new http_conn[MAX_FD]". Unlike the
// original, slots are allocated lazily on accept rather than
// preallocated; the table itself only holds pointers. Table is not
// safe for concurrent use — per spec.md §5 it has a single writer, the
// reactor goroutine, which owns accept/close and hands slots to worker
// goroutines only for the duration of one process() call.
type Table struct {
	slots []*Slot
}

// NewTable allocates a table with room for size file descriptors.
func NewTable(size int) *Table {
	return &Table{slots: make([]*Slot, size)}
}

// Get returns the slot registered for fd, or nil if none is.
func (t *Table) Get(fd int) *Slot {
	if fd < 0 || fd >= len(t.slots) {
		return nil
	}
	return t.slots[fd]
}

// Set registers (or clears, with a nil s) the slot for fd.
func (t *Table) Set(fd int, s *Slot) {
	if fd < 0 || fd >= len(t.slots) {
		return
	}
	t.slots[fd] = s
}

// Len returns the table's fixed capacity (MaxFD in production use).
func (t *Table) Len() int {
	return len(t.slots)
}
