package dzip

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/internal/dident"
	"github.com/gordian-engine/drx/internal/dserial"
)

// run is the state behind one downstream subscription to a Zip.
// It is also the Subscription handed to the downstream consumer.
type run[T, R any] struct {
	log *slog.Logger

	z *Zip[T, R]
	c drx.Consumer[R]

	serial dserial.Serializer

	canceled atomic.Bool

	// Drain loop only.

	// Slots in source order, and the same slots addressed by identity.
	order []*slot[T, R]
	slots map[dident.Identity]*slot[T, R]

	// Bit i is set while slot i has at least one queued value.
	ready *bitset.BitSet

	// Bit i is set once source i has completed normally.
	finished *bitset.BitSet

	demand drx.Demand
	done   bool
}

// slot is the per-source subscriber and its queue of uncombined values.
type slot[T, R any] struct {
	id  dident.Identity
	idx uint
	r   *run[T, R]

	sub      drx.Subscription
	queue    []T
	inflight int
}

func newRun[T, R any](z *Zip[T, R], c drx.Consumer[R]) *run[T, R] {
	n := uint(len(z.sources))
	return &run[T, R]{
		log: z.log,

		z: z,
		c: c,

		ready:    bitset.New(n),
		finished: bitset.New(n),
	}
}

func (r *run[T, R]) Request(n drx.Demand) {
	drx.CheckRequest(n)
	r.serial.Do(func() { r.handleRequest(n) })
}

func (r *run[T, R]) Cancel() {
	if r.canceled.Swap(true) {
		return
	}
	r.serial.Do(r.handleCancel)
}

func (r *run[T, R]) start() {
	if r.canceled.Load() {
		return
	}

	slots := make([]*slot[T, R], len(r.z.sources))
	for i := range slots {
		slots[i] = &slot[T, R]{
			id:  dident.New(),
			idx: uint(i),
			r:   r,
		}
	}
	r.order = slots
	r.slots = dident.Keyed(slots)

	r.c.OnSubscribe(r)

	for i, p := range r.z.sources {
		if r.done || r.canceled.Load() {
			break
		}
		p.Subscribe(slots[i])
	}
}

func (r *run[T, R]) handleRequest(n drx.Demand) {
	if r.done || r.canceled.Load() {
		return
	}

	r.demand = r.demand.Add(n)

	// Values may already be waiting from an earlier prefetch.
	r.emitReady()
	r.topUpAll()
}

func (r *run[T, R]) handleCancel() {
	if r.done {
		return
	}
	r.done = true
	r.cancelSources()
	r.log.Debug("Zip subscription canceled")
}

func (r *run[T, R]) lookup(id dident.Identity) *slot[T, R] {
	s, ok := r.slots[id]
	if !ok {
		panic(fmt.Errorf("BUG: signal from unknown source %s", id))
	}
	return s
}

func (r *run[T, R]) handleSourceSubscribe(id dident.Identity, sub drx.Subscription) {
	s := r.lookup(id)
	if s.sub != nil {
		panic(fmt.Errorf("BUG: source %d called OnSubscribe twice", s.idx))
	}
	s.sub = sub

	if r.done || r.canceled.Load() {
		sub.Cancel()
		return
	}

	r.topUp(s)
}

func (r *run[T, R]) handleSourceValue(id dident.Identity, v T) {
	s := r.lookup(id)
	if r.done || r.canceled.Load() {
		// Already canceled this source; a late value is harmless.
		return
	}

	if r.finished.Test(s.idx) {
		panic(fmt.Errorf("BUG: source %d delivered value %v after completing", s.idx, v))
	}
	if s.inflight == 0 {
		panic(fmt.Errorf("BUG: source %d delivered value %v without outstanding demand", s.idx, v))
	}

	s.inflight--
	s.queue = append(s.queue, v)
	r.ready.Set(s.idx)

	r.emitReady()
	r.topUpAll()
}

func (r *run[T, R]) handleSourceComplete(id dident.Identity) {
	s := r.lookup(id)
	if r.done || r.canceled.Load() {
		return
	}

	if r.finished.Test(s.idx) {
		panic(fmt.Errorf("BUG: source %d completed twice", s.idx))
	}
	r.finished.Set(s.idx)
	s.inflight = 0

	if !r.ready.Test(s.idx) {
		// Nothing left from this source to pair with anything.
		r.finish(drx.Completion[R]())
	}
}

func (r *run[T, R]) handleSourceFailure(id dident.Identity, err error) {
	s := r.lookup(id)
	if r.done || r.canceled.Load() {
		return
	}

	if r.finished.Test(s.idx) {
		panic(fmt.Errorf("BUG: source %d failed after completing", s.idx))
	}

	r.finish(drx.Failure[R](err))
}

// emitReady emits combined values while every slot has a queued value
// and downstream has demand.
func (r *run[T, R]) emitReady() {
	for !r.done && r.ready.All() && r.demand > 0 {
		vals := make([]T, len(r.order))
		for i, s := range r.order {
			vals[i] = s.queue[0]

			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			if len(s.queue) == 0 {
				s.queue = nil
				r.ready.Clear(s.idx)
			}
		}

		r.demand.Take()
		out := r.z.combine(vals)

		if r.canceled.Load() {
			return
		}
		r.c.OnValue(out)

		// A completed source whose queue just drained ends the output.
		if r.finished.DifferenceCardinality(r.ready) > 0 {
			r.finish(drx.Completion[R]())
			return
		}
	}
}

func (r *run[T, R]) topUpAll() {
	for _, s := range r.order {
		if r.done {
			return
		}
		r.topUp(s)
	}
}

// topUp requests enough from s to keep prefetch values queued or in flight,
// as long as downstream has demand.
func (r *run[T, R]) topUp(s *slot[T, R]) {
	if r.demand == 0 || s.sub == nil || r.finished.Test(s.idx) {
		return
	}

	want := r.z.prefetch - len(s.queue) - s.inflight
	if want <= 0 {
		return
	}

	s.inflight += want
	s.sub.Request(drx.Demand(want))
}

func (r *run[T, R]) finish(e drx.Event[R]) {
	r.done = true
	r.cancelSources()

	if e.Kind == drx.FailureEvent {
		r.log.Debug("Zip failed", "err", e.Err)
	} else {
		r.log.Debug("Zip completed")
	}

	if !r.canceled.Load() {
		e.Deliver(r.c)
	}
}

func (r *run[T, R]) cancelSources() {
	for _, s := range r.order {
		s.queue = nil
		if s.sub != nil {
			s.sub.Cancel()
		}
	}
}

func (s *slot[T, R]) Identity() dident.Identity {
	return s.id
}

func (s *slot[T, R]) OnSubscribe(sub drx.Subscription) {
	s.r.serial.Do(func() { s.r.handleSourceSubscribe(s.id, sub) })
}

func (s *slot[T, R]) OnValue(v T) {
	s.r.serial.Do(func() { s.r.handleSourceValue(s.id, v) })
}

func (s *slot[T, R]) OnComplete() {
	s.r.serial.Do(func() { s.r.handleSourceComplete(s.id) })
}

func (s *slot[T, R]) OnFailure(err error) {
	s.r.serial.Do(func() { s.r.handleSourceFailure(s.id, err) })
}
