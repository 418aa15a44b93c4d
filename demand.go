package drx

import (
	"math"
	"strconv"
)

// Demand is the number of values a consumer is willing to accept.
//
// The zero value is no demand.
// [Unbounded] is a sentinel that is never decremented.
type Demand uint64

// Unbounded demand allows a producer to emit without limit.
const Unbounded Demand = math.MaxUint64

// Add returns the sum of d and n, saturating at [Unbounded].
func (d Demand) Add(n Demand) Demand {
	if d == Unbounded || n == Unbounded {
		return Unbounded
	}

	sum := d + n
	if sum < d || sum == Unbounded {
		// Overflow, or landed on the sentinel exactly;
		// either way there is no finite demand left to track.
		return Unbounded
	}
	return sum
}

// Take consumes one unit of demand for a delivered value.
// It reports false, leaving d unchanged, if there was no demand.
func (d *Demand) Take() bool {
	switch *d {
	case 0:
		return false
	case Unbounded:
		return true
	default:
		*d--
		return true
	}
}

// IsUnbounded reports whether d is the [Unbounded] sentinel.
func (d Demand) IsUnbounded() bool {
	return d == Unbounded
}

func (d Demand) String() string {
	if d == Unbounded {
		return "unbounded"
	}
	return strconv.FormatUint(uint64(d), 10)
}
