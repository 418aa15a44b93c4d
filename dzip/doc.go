// Package dzip combines several producers into one,
// emitting a combined value only once every source has produced
// a value that has not yet been combined.
//
// Values are taken from each source in FIFO order,
// so the output is the element-wise combination of the source sequences,
// truncated to the length of the shortest one.
//
// Every downstream subscription gets its own set of source subscriptions.
// Demand is bounded per source by [Config.Prefetch]:
// while the downstream consumer has outstanding demand,
// each source is asked for just enough values to keep
// Prefetch values queued or in flight.
package dzip
