// Package dident mints unique subscriber identities
// and keeps registries keyed by them.
package dident

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
)

// Identity is an opaque token identifying one subscriber instance.
// Identities are comparable and usable as map keys.
// The zero Identity is never minted.
type Identity struct {
	n uint64
}

// Process-wide counter; identities are never reused.
var lastIdentity atomic.Uint64

// New mints a fresh Identity.
func New() Identity {
	return Identity{n: lastIdentity.Add(1)}
}

// IsZero reports whether id is the zero Identity.
func (id Identity) IsZero() bool {
	return id.n == 0
}

func (id Identity) String() string {
	return "sub#" + strconv.FormatUint(id.n, 10)
}

// Identified is implemented by anything that carries an Identity.
type Identified interface {
	Identity() Identity
}

// Keyed returns a map of vs keyed by each element's Identity.
//
// Identities must be unique across vs;
// a collision means two elements claim to be the same subscriber,
// and Keyed panics.
func Keyed[V Identified](vs []V) map[Identity]V {
	out := make(map[Identity]V, len(vs))
	for _, v := range vs {
		id := v.Identity()
		if id.IsZero() {
			panic(errors.New("BUG: attempted to key element with zero identity"))
		}
		if _, ok := out[id]; ok {
			panic(fmt.Errorf("BUG: duplicate identity %s", id))
		}
		out[id] = v
	}
	return out
}
