package gapbuf

// Ring is a circular doubly linked list of buffers with one active
// buffer, modeling the editor's open-buffer list.
type Ring struct {
	active *Buffer
}

// NewRing starts a ring containing a single buffer.
func NewRing(first *Buffer) *Ring {
	first.next = first
	first.prev = first

	return &Ring{active: first}
}

// Active returns the currently active buffer.
func (r *Ring) Active() *Buffer { return r.active }

// Add inserts buf into the ring immediately after the active buffer and
// makes it active.
func (r *Ring) Add(buf *Buffer) {
	buf.next = r.active.next
	buf.prev = r.active
	r.active.next.prev = buf
	r.active.next = buf
	r.active = buf
}

// Next advances to and returns the next buffer in the ring.
func (r *Ring) Next() *Buffer {
	r.active = r.active.next

	return r.active
}

// Prev advances to and returns the previous buffer in the ring.
func (r *Ring) Prev() *Buffer {
	r.active = r.active.prev

	return r.active
}

// Kill removes the active buffer from the ring, making its successor
// active. It reports true if the ring is now empty (the killed buffer was
// the last one).
func (r *Ring) Kill() bool {
	if r.active.next == r.active {
		r.active = nil

		return true
	}

	prev, next := r.active.prev, r.active.next
	prev.next = next
	next.prev = prev
	r.active = next

	return false
}
