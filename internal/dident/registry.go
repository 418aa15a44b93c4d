package dident

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Registry maps identities to values,
// remembering the order in which identities were added.
//
// Registry is not safe for concurrent use;
// callers serialize access.
type Registry[V any] struct {
	vals  map[Identity]V
	order []Identity
}

// NewRegistry returns an empty Registry.
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{
		vals: make(map[Identity]V),
	}
}

// Add registers v under id.
// Adding an identity that is already present panics.
func (r *Registry[V]) Add(id Identity, v V) {
	if id.IsZero() {
		panic(errors.New("BUG: attempted to register zero identity"))
	}
	if _, ok := r.vals[id]; ok {
		panic(fmt.Errorf("BUG: attempted to register identity %s twice", id))
	}

	r.vals[id] = v
	r.order = append(r.order, id)
}

// Remove unregisters id, reporting whether it was present.
func (r *Registry[V]) Remove(id Identity) bool {
	if _, ok := r.vals[id]; !ok {
		return false
	}

	delete(r.vals, id)
	idx := slices.Index(r.order, id)
	r.order = slices.Delete(r.order, idx, idx+1)
	return true
}

// Get returns the value registered under id.
func (r *Registry[V]) Get(id Identity) (V, bool) {
	v, ok := r.vals[id]
	return v, ok
}

// Len returns the number of registered identities.
func (r *Registry[V]) Len() int {
	return len(r.vals)
}

// All iterates the registry in insertion order.
//
// The iteration runs over a snapshot of the order,
// so the registry may be modified during iteration.
// Entries removed before being reached are skipped;
// entries added during iteration are not visited.
func (r *Registry[V]) All() iter.Seq2[Identity, V] {
	order := slices.Clone(r.order)
	return func(yield func(Identity, V) bool) {
		for _, id := range order {
			v, ok := r.vals[id]
			if !ok {
				continue
			}
			if !yield(id, v) {
				return
			}
		}
	}
}
