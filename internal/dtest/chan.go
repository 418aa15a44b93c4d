// Package dtest contains helpers shared by tests across the module.
package dtest

import (
	"testing"
	"time"
)

// ScaleDuration is the upper bound the "Soon" helpers wait
// before failing the test.
const ScaleDuration = 100 * time.Millisecond

// ReceiveSoon returns the value received from ch,
// failing the test if nothing arrives within [ScaleDuration].
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	timer := time.NewTimer(ScaleDuration)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v
	case <-timer.C:
		t.Fatalf("did not receive value within %s", ScaleDuration)
	}

	panic("unreachable")
}

// SendSoon sends v on ch,
// failing the test if the send does not complete within [ScaleDuration].
func SendSoon[T any](t testing.TB, ch chan<- T, v T) {
	t.Helper()

	timer := time.NewTimer(ScaleDuration)
	defer timer.Stop()

	select {
	case ch <- v:
	case <-timer.C:
		t.Fatalf("could not send value within %s", ScaleDuration)
	}
}

// IsSending asserts that a receive from ch succeeds immediately,
// which is how a closed readiness channel is observed.
func IsSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
	default:
		t.Fatal("channel should have been ready to receive")
	}
}

// NotSending asserts that ch has nothing ready to receive.
func NotSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		t.Fatal("channel should not have been ready to receive")
	default:
	}
}
