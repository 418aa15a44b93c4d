package drx

import "fmt"

// Producer emits values to consumers under their requested demand.
//
// Subscribe must call [Consumer.OnSubscribe] before any other callback,
// and it returns the same Subscription it handed to OnSubscribe.
// The producer must not call OnValue before the consumer has requested demand,
// and it must never call any callback after a terminal callback
// or after the subscription has been canceled.
type Producer[T any] interface {
	Subscribe(Consumer[T]) Subscription
}

// Consumer receives values and at most one terminal signal from a producer.
//
// After OnComplete or OnFailure,
// the producer must not invoke the consumer again.
type Consumer[T any] interface {
	OnSubscribe(Subscription)
	OnValue(T)
	OnComplete()
	OnFailure(error)
}

// Subscription is the live link between one consumer and one producer.
// It is owned by the consumer.
type Subscription interface {
	// Request adds n to the consumer's outstanding demand.
	// Requesting zero is a protocol violation.
	Request(n Demand)

	// Cancel stops delivery to the consumer.
	// Cancel is idempotent.
	// Once Cancel returns, no callback that had not already begun
	// will be delivered to the consumer.
	Cancel()
}

// ProducerFunc adapts a plain function to the [Producer] interface.
type ProducerFunc[T any] func(Consumer[T]) Subscription

func (f ProducerFunc[T]) Subscribe(c Consumer[T]) Subscription {
	return f(c)
}

// CheckRequest panics if n is not a valid argument to [Subscription.Request].
// Subscription implementations call this at the top of Request.
func CheckRequest(n Demand) {
	if n == 0 {
		panic(fmt.Errorf("BUG: demand must be positive (got %d)", n))
	}
}

// NopSubscription is a Subscription that ignores all calls.
// It is useful for producers that terminate inside Subscribe.
type NopSubscription struct{}

func (NopSubscription) Request(n Demand) { CheckRequest(n) }
func (NopSubscription) Cancel()          {}
