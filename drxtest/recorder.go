package drxtest

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gordian-engine/drx"
)

// Recorder is a consumer that records every signal it receives.
//
// It requests its initial demand in OnSubscribe
// and panics if a producer violates the contract:
// a value beyond the requested demand,
// a second OnSubscribe, or any signal after a terminal one.
type Recorder[T any] struct {
	initial drx.Demand

	mu  sync.Mutex
	sub drx.Subscription

	// The subscription returned from Subscribe in [Record],
	// usable before OnSubscribe arrives when delivery is deferred
	// to another goroutine's drain loop.
	handle drx.Subscription

	demand drx.Demand
	events []drx.Event[T]
	done   bool
}

// NewRecorder returns a Recorder that requests initial demand on subscription.
// An initial demand of zero requests nothing until [*Recorder.Request] is called.
func NewRecorder[T any](initial drx.Demand) *Recorder[T] {
	return &Recorder[T]{initial: initial}
}

// Record subscribes a new unbounded Recorder to p.
func Record[T any](p drx.Producer[T]) *Recorder[T] {
	r := NewRecorder[T](drx.Unbounded)
	sub := p.Subscribe(r)

	r.mu.Lock()
	r.handle = sub
	r.mu.Unlock()

	return r
}

func (r *Recorder[T]) OnSubscribe(sub drx.Subscription) {
	r.mu.Lock()
	if r.sub != nil {
		r.mu.Unlock()
		panic(errors.New("BUG: recorder received OnSubscribe twice"))
	}
	r.sub = sub
	r.mu.Unlock()

	if r.initial > 0 {
		r.Request(r.initial)
	}
}

func (r *Recorder[T]) OnValue(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		panic(fmt.Errorf("BUG: recorder received value %v after terminal signal", v))
	}
	if !r.demand.Take() {
		panic(fmt.Errorf("BUG: recorder received value %v without outstanding demand", v))
	}
	r.events = append(r.events, drx.ValueOf(v))
}

func (r *Recorder[T]) OnComplete() {
	r.terminate(drx.Completion[T]())
}

func (r *Recorder[T]) OnFailure(err error) {
	r.terminate(drx.Failure[T](err))
}

func (r *Recorder[T]) terminate(e drx.Event[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		panic(fmt.Errorf("BUG: recorder received %s after terminal signal", e))
	}
	r.done = true
	r.events = append(r.events, e)
}

// Request adds n to the recorder's demand and forwards it to the producer.
func (r *Recorder[T]) Request(n drx.Demand) {
	r.mu.Lock()
	sub := r.subscription()
	r.demand = r.demand.Add(n)
	r.mu.Unlock()

	sub.Request(n)
}

// Cancel cancels the recorder's subscription.
func (r *Recorder[T]) Cancel() {
	r.mu.Lock()
	sub := r.subscription()
	r.mu.Unlock()

	sub.Cancel()
}

// subscription must be called with r.mu held.
func (r *Recorder[T]) subscription() drx.Subscription {
	if r.sub != nil {
		return r.sub
	}
	return r.handle
}

// Events returns a copy of everything recorded so far.
func (r *Recorder[T]) Events() []drx.Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Values returns the recorded values, without any terminal signal.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, 0, len(r.events))
	for _, e := range r.events {
		if e.Kind == drx.ValueEvent {
			out = append(out, e.Val)
		}
	}
	return out
}

// Done reports whether a terminal signal has been recorded.
func (r *Recorder[T]) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
