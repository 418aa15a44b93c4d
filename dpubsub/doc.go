// Package dpubsub contains types for in-application
// publish-subscribe patterns.
//
// The [Stream] type specifically simplifies the pattern of
// a single publisher with many concurrent subscribers,
// who all need to observe the same sequence of values.
//
// [Observe] bridges a drx producer onto a Stream,
// so that goroutines can follow a producer's output
// by waiting on channels instead of implementing a consumer.
package dpubsub
