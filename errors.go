package drx

import "strconv"

// InvalidReplayCapacityError is returned when constructing a replay hub
// with a negative replay capacity.
type InvalidReplayCapacityError struct {
	Capacity int
}

func (e InvalidReplayCapacityError) Error() string {
	return "replay capacity must be non-negative (got " + strconv.Itoa(e.Capacity) + ")"
}

// TooFewSourcesError is returned when constructing a zip
// with fewer than two sources.
type TooFewSourcesError struct {
	Count int
}

func (e TooFewSourcesError) Error() string {
	return "zip requires at least 2 sources (got " + strconv.Itoa(e.Count) + ")"
}

// InvalidPrefetchError is returned when constructing a zip
// with a negative per-source prefetch.
type InvalidPrefetchError struct {
	Prefetch int
}

func (e InvalidPrefetchError) Error() string {
	return "prefetch must be non-negative (got " + strconv.Itoa(e.Prefetch) + ")"
}
