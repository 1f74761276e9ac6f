package history

// Ring is a fixed-capacity FIFO buffer. Once full, each append evicts the
// oldest element. Not safe for concurrent use on its own; Store adds the
// locking.
type Ring[T any] struct {
	buf   []T
	head  int
	count int
}

// NewRing returns a ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Append adds v, evicting the oldest element if the ring is at capacity.
func (r *Ring[T]) Append(v T) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = v
		r.count++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Items returns the buffered elements oldest first, as a fresh slice.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.head+i)%len(r.buf)])
	}
	return out
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }
