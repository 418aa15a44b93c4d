package drxtest

import "github.com/gordian-engine/drx"

// Values returns value events for each of vs,
// for building expected event sequences in tests.
func Values[T any](vs ...T) []drx.Event[T] {
	out := make([]drx.Event[T], len(vs))
	for i, v := range vs {
		out[i] = drx.ValueOf(v)
	}
	return out
}

// ThenComplete returns es followed by a completion event.
func ThenComplete[T any](es []drx.Event[T]) []drx.Event[T] {
	return append(es, drx.Completion[T]())
}

// ThenFail returns es followed by a failure event carrying err.
func ThenFail[T any](es []drx.Event[T], err error) []drx.Event[T] {
	return append(es, drx.Failure[T](err))
}
