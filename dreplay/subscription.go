package dreplay

import (
	"sync/atomic"

	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/internal/dident"
)

// subscription links one consumer to a Hub.
//
// The back-reference to the hub does not keep anything alive
// beyond what the consumer already holds;
// once the consumer drops the subscription and the hub is unreferenced,
// both are collected together.
type subscription[T any] struct {
	id       dident.Identity
	hub      *Hub[T]
	consumer drx.Consumer[T]

	// Set synchronously by Cancel and checked before every callback.
	canceled atomic.Bool

	// Drain loop only.
	demand          drx.Demand
	pending         []T
	terminalPending bool
	done            bool
}

func (s *subscription[T]) Identity() dident.Identity {
	return s.id
}

func (s *subscription[T]) Request(n drx.Demand) {
	drx.CheckRequest(n)
	s.hub.serial.Do(func() { s.hub.handleRequest(s, n) })
}

func (s *subscription[T]) Cancel() {
	if s.canceled.Swap(true) {
		return
	}
	s.hub.serial.Do(func() { s.hub.handleCancel(s) })
}
