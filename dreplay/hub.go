package dreplay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/internal/dident"
	"github.com/gordian-engine/drx/internal/dserial"
)

// HubConfig is the configuration passed to [NewHub].
type HubConfig struct {
	// How many of the most recent upstream values to retain
	// for consumers that subscribe later.
	// Zero disables replay; the hub then only forwards live values.
	ReplayCapacity int

	// By default the hub subscribes to upstream
	// when its first consumer subscribes.
	// Setting Eager subscribes to upstream inside NewHub,
	// so that values emitted before any consumer arrives
	// still land in the replay buffer.
	Eager bool
}

// Hub multicasts a single upstream subscription to many consumers.
//
// Create a Hub with [NewHub] or [Share].
// A Hub is safe for concurrent use.
type Hub[T any] struct {
	log *slog.Logger

	upstream drx.Producer[T]

	// All state below, apart from the buffer snapshot guard
	// and the subscriber count, is only touched on the serializer's drain loop.
	serial dserial.Serializer

	subs *dident.Registry[*subscription[T]]

	// Guards buf against concurrent reads from Buffered.
	// Writes only happen on the drain loop.
	bufMu sync.Mutex
	buf   *ring[T]

	// The completion record: nil until upstream terminates,
	// and never modified after being set.
	terminal *drx.Event[T]

	connected   bool
	upstreamSub drx.Subscription

	nSubs atomic.Int64
}

// NewHub returns a Hub sharing upstream according to cfg.
//
// An error is returned if cfg.ReplayCapacity is negative.
func NewHub[T any](
	log *slog.Logger,
	upstream drx.Producer[T],
	cfg HubConfig,
) (*Hub[T], error) {
	if cfg.ReplayCapacity < 0 {
		return nil, drx.InvalidReplayCapacityError{Capacity: cfg.ReplayCapacity}
	}

	h := &Hub[T]{
		log: log.With("hub", uuid.NewString()),

		upstream: upstream,

		subs: dident.NewRegistry[*subscription[T]](),
		buf:  newRing[T](cfg.ReplayCapacity),
	}

	if cfg.Eager {
		h.Connect()
	}

	return h, nil
}

// Share returns a lazily connected Hub over upstream
// that replays up to capacity values.
func Share[T any](log *slog.Logger, upstream drx.Producer[T], capacity int) (*Hub[T], error) {
	return NewHub(log, upstream, HubConfig{ReplayCapacity: capacity})
}

// Subscribe registers c with the hub.
//
// The consumer first receives OnSubscribe,
// then the current replay buffer (oldest first) as its demand allows,
// strictly before any value upstream emits after this call.
// If upstream has already terminated,
// the terminal signal follows the replay.
//
// The first call to Subscribe connects the hub to upstream,
// unless the hub is already connected.
func (h *Hub[T]) Subscribe(c drx.Consumer[T]) drx.Subscription {
	s := &subscription[T]{
		id:       dident.New(),
		hub:      h,
		consumer: c,
	}

	h.serial.Do(func() { h.handleSubscribe(s) })

	return s
}

// Connect subscribes the hub to upstream if it is not already subscribed.
// Calling Connect is only necessary to start buffering
// before the first consumer subscribes.
func (h *Hub[T]) Connect() {
	h.serial.Do(h.connect)
}

// SubscriberCount returns the number of currently registered consumers.
func (h *Hub[T]) SubscriberCount() int {
	return int(h.nSubs.Load())
}

// Buffered returns a copy of the replay buffer, oldest first.
func (h *Hub[T]) Buffered() []T {
	h.bufMu.Lock()
	defer h.bufMu.Unlock()
	return h.buf.Snapshot()
}

func (h *Hub[T]) connect() {
	if h.connected {
		return
	}
	h.connected = true

	h.log.Debug("Subscribing to upstream")
	h.upstream.Subscribe(upstreamConsumer[T]{h: h})
}

func (h *Hub[T]) handleSubscribe(s *subscription[T]) {
	if s.canceled.Load() {
		// Canceled through the returned handle
		// before this queued work ran.
		return
	}

	h.subs.Add(s.id, s)
	h.nSubs.Add(1)

	s.pending = h.buf.Snapshot()
	s.terminalPending = h.terminal != nil

	s.consumer.OnSubscribe(s)

	if h.terminal == nil {
		h.connect()
	}

	// With an empty buffer and a latched terminal,
	// the terminal goes out without waiting for demand.
	h.flush(s)
}

func (h *Hub[T]) handleRequest(s *subscription[T], n drx.Demand) {
	if s.canceled.Load() || s.done {
		return
	}

	s.demand = s.demand.Add(n)
	h.flush(s)
}

func (h *Hub[T]) handleCancel(s *subscription[T]) {
	if h.subs.Remove(s.id) {
		h.nSubs.Add(-1)
	}
	s.pending = nil
}

// flush delivers as much of s's pending replay as its demand allows,
// followed by the terminal signal once the replay is exhausted.
func (h *Hub[T]) flush(s *subscription[T]) {
	for len(s.pending) > 0 {
		if s.canceled.Load() {
			return
		}
		if !s.demand.Take() {
			return
		}

		v := s.pending[0]
		var zero T
		s.pending[0] = zero
		s.pending = s.pending[1:]

		s.consumer.OnValue(v)
	}
	s.pending = nil

	if s.terminalPending && !s.canceled.Load() {
		h.deliverTerminal(s)
	}
}

func (h *Hub[T]) deliverTerminal(s *subscription[T]) {
	s.terminalPending = false
	s.done = true
	if h.subs.Remove(s.id) {
		h.nSubs.Add(-1)
	}

	h.terminal.Deliver(s.consumer)
}

func (h *Hub[T]) handleUpstreamSubscribe(sub drx.Subscription) {
	if h.upstreamSub != nil {
		panic(errors.New("BUG: upstream called OnSubscribe twice"))
	}
	h.upstreamSub = sub

	sub.Request(drx.Unbounded)
}

func (h *Hub[T]) handleUpstreamValue(v T) {
	if h.terminal != nil {
		panic(fmt.Errorf(
			"BUG: upstream delivered value %v after terminating with %s",
			v, h.terminal,
		))
	}

	h.bufMu.Lock()
	h.buf.Push(v)
	h.bufMu.Unlock()

	for _, s := range h.subs.All() {
		if s.canceled.Load() || len(s.pending) > 0 {
			// A consumer still working through its replay
			// has no demand left for live values.
			continue
		}
		if !s.demand.Take() {
			continue
		}

		s.consumer.OnValue(v)
	}
}

func (h *Hub[T]) handleUpstreamTerminal(e drx.Event[T]) {
	if h.terminal != nil {
		panic(fmt.Errorf(
			"BUG: upstream terminated with %s after already terminating with %s",
			e, h.terminal,
		))
	}
	h.terminal = &e
	h.upstreamSub = nil

	if e.Kind == drx.FailureEvent {
		h.log.Debug("Upstream failed", "err", e.Err)
	} else {
		h.log.Debug("Upstream completed")
	}

	for _, s := range h.subs.All() {
		if s.canceled.Load() {
			continue
		}
		if len(s.pending) > 0 {
			s.terminalPending = true
			continue
		}

		h.deliverTerminal(s)
	}
}

// upstreamConsumer is the hub's single subscription to upstream.
// Every callback is routed through the serializer,
// so upstream may call it from any goroutine.
type upstreamConsumer[T any] struct {
	h *Hub[T]
}

func (u upstreamConsumer[T]) OnSubscribe(sub drx.Subscription) {
	u.h.serial.Do(func() { u.h.handleUpstreamSubscribe(sub) })
}

func (u upstreamConsumer[T]) OnValue(v T) {
	u.h.serial.Do(func() { u.h.handleUpstreamValue(v) })
}

func (u upstreamConsumer[T]) OnComplete() {
	u.h.serial.Do(func() { u.h.handleUpstreamTerminal(drx.Completion[T]()) })
}

func (u upstreamConsumer[T]) OnFailure(err error) {
	u.h.serial.Do(func() { u.h.handleUpstreamTerminal(drx.Failure[T](err)) })
}
