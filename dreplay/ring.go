package dreplay

// ring is a fixed-capacity FIFO that evicts its oldest entry on overflow.
type ring[T any] struct {
	vals  []T
	start int
	n     int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{vals: make([]T, capacity)}
}

// Push appends v, evicting the oldest value if r is full.
// A zero-capacity ring retains nothing.
func (r *ring[T]) Push(v T) {
	k := len(r.vals)
	if k == 0 {
		return
	}

	if r.n < k {
		r.vals[(r.start+r.n)%k] = v
		r.n++
		return
	}

	r.vals[r.start] = v
	r.start = (r.start + 1) % k
}

// Len returns the number of retained values.
func (r *ring[T]) Len() int {
	return r.n
}

// Snapshot returns a copy of the retained values, oldest first.
// It returns nil if r is empty.
func (r *ring[T]) Snapshot() []T {
	if r.n == 0 {
		return nil
	}

	out := make([]T, r.n)
	k := len(r.vals)
	for i := range out {
		out[i] = r.vals[(r.start+i)%k]
	}
	return out
}
