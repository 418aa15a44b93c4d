package drx

import "fmt"

// EventKind distinguishes the three signals a consumer can observe.
type EventKind uint8

const (
	ValueEvent EventKind = iota + 1
	CompleteEvent
	FailureEvent
)

// Event is a materialized consumer callback.
// Recorders and stream bridges use it to hold signals as data.
type Event[T any] struct {
	Kind EventKind

	// Val is set only for ValueEvent.
	Val T

	// Err is set only for FailureEvent.
	Err error
}

// ValueOf returns a value event holding v.
func ValueOf[T any](v T) Event[T] {
	return Event[T]{Kind: ValueEvent, Val: v}
}

// Completion returns a normal completion event.
func Completion[T any]() Event[T] {
	return Event[T]{Kind: CompleteEvent}
}

// Failure returns a failure event carrying err.
func Failure[T any](err error) Event[T] {
	return Event[T]{Kind: FailureEvent, Err: err}
}

// IsTerminal reports whether e is a completion or failure.
func (e Event[T]) IsTerminal() bool {
	return e.Kind == CompleteEvent || e.Kind == FailureEvent
}

// Deliver invokes the callback on c that corresponds to e.
func (e Event[T]) Deliver(c Consumer[T]) {
	switch e.Kind {
	case ValueEvent:
		c.OnValue(e.Val)
	case CompleteEvent:
		c.OnComplete()
	case FailureEvent:
		c.OnFailure(e.Err)
	default:
		panic(fmt.Errorf("BUG: invalid event kind %d", e.Kind))
	}
}

func (e Event[T]) String() string {
	switch e.Kind {
	case ValueEvent:
		return fmt.Sprintf("value(%v)", e.Val)
	case CompleteEvent:
		return "complete"
	case FailureEvent:
		return fmt.Sprintf("failure(%v)", e.Err)
	default:
		return fmt.Sprintf("invalid(%d)", e.Kind)
	}
}
