package drx

import "sync"

// Cancellable is a scoped handle around a [Subscription].
// Calling Cancel is the explicit way to stop a [Sink];
// dropping the handle without canceling leaves the subscription live.
type Cancellable struct {
	once sync.Once
	sub  Subscription
}

// Cancel cancels the underlying subscription.
// It is safe to call more than once.
func (c *Cancellable) Cancel() {
	c.once.Do(c.sub.Cancel)
}

// Sink subscribes to p with unbounded demand.
//
// onValue is called for every value.
// onTerminal is called once, with nil on completion
// or with the failure reason.
// Either callback may be nil.
func Sink[T any](p Producer[T], onValue func(T), onTerminal func(error)) *Cancellable {
	s := &sink[T]{
		onValue:    onValue,
		onTerminal: onTerminal,
	}
	return &Cancellable{sub: p.Subscribe(s)}
}

type sink[T any] struct {
	onValue    func(T)
	onTerminal func(error)
}

func (s *sink[T]) OnSubscribe(sub Subscription) {
	sub.Request(Unbounded)
}

func (s *sink[T]) OnValue(v T) {
	if s.onValue != nil {
		s.onValue(v)
	}
}

func (s *sink[T]) OnComplete() {
	if s.onTerminal != nil {
		s.onTerminal(nil)
	}
}

func (s *sink[T]) OnFailure(err error) {
	if s.onTerminal != nil {
		s.onTerminal(err)
	}
}
