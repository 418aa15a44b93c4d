package dpubsub

import "github.com/gordian-engine/drx"

// Observe subscribes to p with unbounded demand
// and publishes every signal p delivers, terminal signals included,
// to the returned stream.
//
// The stream's head is the first signal;
// after a terminal event, no further events are published.
// Cancel the returned subscription to stop observing early.
func Observe[T any](p drx.Producer[T]) (*Stream[drx.Event[T]], drx.Subscription) {
	head := NewStream[drx.Event[T]]()
	o := &observer[T]{s: head}
	sub := p.Subscribe(o)
	return head, sub
}

// observer publishes to its current tail.
// Producers never invoke callbacks concurrently,
// which satisfies the stream's single-writer requirement.
type observer[T any] struct {
	s *Stream[drx.Event[T]]
}

func (o *observer[T]) OnSubscribe(sub drx.Subscription) {
	sub.Request(drx.Unbounded)
}

func (o *observer[T]) OnValue(v T) {
	o.publish(drx.ValueOf(v))
}

func (o *observer[T]) OnComplete() {
	o.publish(drx.Completion[T]())
}

func (o *observer[T]) OnFailure(err error) {
	o.publish(drx.Failure[T](err))
}

func (o *observer[T]) publish(e drx.Event[T]) {
	o.s.Publish(e)
	o.s = o.s.Next
}
