// Package dserial serializes work from many goroutines onto one drain loop.
package dserial

import "sync"

// Serializer runs submitted functions one at a time, in submission order.
//
// The goroutine that submits work to an idle Serializer
// becomes the drain loop and runs queued work until the queue is empty.
// Work submitted while a drain loop is active,
// including work submitted from inside a running function,
// is queued and picked up by that loop instead of running immediately.
// That is what makes reentrant calls from consumer callbacks safe:
// they never observe a half-finished mutation.
//
// The zero value is ready to use.
type Serializer struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

// Do runs fn on the drain loop.
// If no loop is active, Do runs fn (and anything queued behind it)
// before returning.
func (s *Serializer) Do(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

func (s *Serializer) drain() {
	finished := false
	defer func() {
		if finished {
			return
		}

		// A function panicked.
		// Release the loop so the next Do can pick up the remaining work.
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			finished = true
			return
		}

		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}
