// Package drxtest contains producers and consumers for testing
// code built on the drx contract.
package drxtest

import (
	"slices"
	"sync"

	"github.com/gordian-engine/drx"
)

// Subject is a hot producer driven by the test.
//
// Values passed to [*Subject.Send] go to every subscriber
// with outstanding demand, in subscription order;
// subscribers without demand miss the value.
// After [*Subject.Complete] or [*Subject.Fail],
// further sends are ignored and new subscribers
// immediately receive the terminal signal.
type Subject[T any] struct {
	mu       sync.Mutex
	subs     []*subjectSub[T]
	terminal *drx.Event[T]
}

// NewSubject returns a Subject with no subscribers.
func NewSubject[T any]() *Subject[T] {
	return new(Subject[T])
}

func (s *Subject[T]) Subscribe(c drx.Consumer[T]) drx.Subscription {
	sub := &subjectSub[T]{s: s, c: c}

	s.mu.Lock()
	term := s.terminal
	if term == nil {
		s.subs = append(s.subs, sub)
	}
	s.mu.Unlock()

	c.OnSubscribe(sub)
	if term != nil && !sub.isCanceled() {
		term.Deliver(c)
	}

	return sub
}

// Send delivers v to each subscriber that has demand.
func (s *Subject[T]) Send(v T) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		return
	}
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.take() {
			sub.c.OnValue(v)
		}
	}
}

// Complete finishes every current and future subscriber normally.
func (s *Subject[T]) Complete() {
	s.finish(drx.Completion[T]())
}

// Fail finishes every current and future subscriber with err.
func (s *Subject[T]) Fail(err error) {
	s.finish(drx.Failure[T](err))
}

// SubscriberCount returns the number of live subscribers.
func (s *Subject[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Subject[T]) finish(e drx.Event[T]) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		return
	}
	s.terminal = &e
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		if !sub.isCanceled() {
			e.Deliver(sub.c)
		}
	}
}

func (s *Subject[T]) remove(sub *subjectSub[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.subs, sub); i >= 0 {
		s.subs = slices.Delete(s.subs, i, i+1)
	}
}

type subjectSub[T any] struct {
	s *Subject[T]
	c drx.Consumer[T]

	mu       sync.Mutex
	demand   drx.Demand
	canceled bool
}

func (sub *subjectSub[T]) Request(n drx.Demand) {
	drx.CheckRequest(n)

	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.demand = sub.demand.Add(n)
}

func (sub *subjectSub[T]) Cancel() {
	sub.mu.Lock()
	already := sub.canceled
	sub.canceled = true
	sub.mu.Unlock()

	if !already {
		sub.s.remove(sub)
	}
}

func (sub *subjectSub[T]) take() bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.canceled {
		return false
	}
	return sub.demand.Take()
}

func (sub *subjectSub[T]) isCanceled() bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.canceled
}
