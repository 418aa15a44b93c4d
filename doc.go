// Package drx contains the core contract for demand-driven reactive streams.
//
// A [Producer] emits values to a [Consumer] only as far as the consumer
// has requested through its [Subscription].
// Demand accumulates additively across calls to [Subscription.Request],
// and every delivered value consumes one unit of it,
// unless the consumer requested [Unbounded] demand.
//
// The operators built on this contract live in subpackages:
//   - dreplay: a multicast hub that replays a bounded history to late subscribers
//   - dzip: an N-ary combinator that pairs one value from each source
//
// Protocol violations, such as emitting past demand
// or signaling twice after termination,
// indicate a bug in a collaborating component
// and cause a panic rather than a returned error.
package drx
