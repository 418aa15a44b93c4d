package drxtest

import (
	"slices"
	"sync"

	"github.com/gordian-engine/drx"
)

// Sequence is a cold producer that emits a fixed list of values
// to each subscriber, strictly within that subscriber's demand,
// and then terminates.
type Sequence[T any] struct {
	vals []T
	err  error
}

// NewSequence returns a Sequence that completes after emitting vals.
func NewSequence[T any](vals ...T) *Sequence[T] {
	return &Sequence[T]{vals: slices.Clone(vals)}
}

// FailingSequence returns a Sequence that fails with err after emitting vals.
func FailingSequence[T any](err error, vals ...T) *Sequence[T] {
	return &Sequence[T]{vals: slices.Clone(vals), err: err}
}

func (s *Sequence[T]) Subscribe(c drx.Consumer[T]) drx.Subscription {
	sub := &sequenceSub[T]{seq: s, c: c}
	c.OnSubscribe(sub)

	// An empty sequence terminates without waiting for demand.
	sub.drain()
	return sub
}

type sequenceSub[T any] struct {
	seq *Sequence[T]
	c   drx.Consumer[T]

	mu       sync.Mutex
	idx      int
	demand   drx.Demand
	emitting bool
	canceled bool
	done     bool
}

func (sub *sequenceSub[T]) Request(n drx.Demand) {
	drx.CheckRequest(n)

	sub.mu.Lock()
	sub.demand = sub.demand.Add(n)
	sub.mu.Unlock()

	sub.drain()
}

func (sub *sequenceSub[T]) Cancel() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.canceled = true
}

// drain emits as far as demand allows.
// Reentrant calls from inside a callback return immediately
// and the outer loop picks up the added demand.
func (sub *sequenceSub[T]) drain() {
	sub.mu.Lock()
	if sub.emitting {
		sub.mu.Unlock()
		return
	}
	sub.emitting = true

	for !sub.canceled && !sub.done {
		if sub.idx == len(sub.seq.vals) {
			sub.done = true
			sub.mu.Unlock()

			if sub.seq.err != nil {
				sub.c.OnFailure(sub.seq.err)
			} else {
				sub.c.OnComplete()
			}

			sub.mu.Lock()
			break
		}

		if !sub.demand.Take() {
			break
		}

		v := sub.seq.vals[sub.idx]
		sub.idx++
		sub.mu.Unlock()

		sub.c.OnValue(v)

		sub.mu.Lock()
	}

	sub.emitting = false
	sub.mu.Unlock()
}
