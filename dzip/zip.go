package dzip

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/gordian-engine/drx"
)

// Config is the configuration for the constructors in this package.
type Config struct {
	// How many values to keep queued or requested from each source
	// while the downstream consumer has demand.
	// Zero uses the default of 1.
	Prefetch int
}

// Zip is a producer that combines one value from each source into an R.
type Zip[T, R any] struct {
	log *slog.Logger

	sources []drx.Producer[T]
	combine func([]T) R

	prefetch int
}

// New returns a Zip emitting a slice holding one value from each source,
// in the same order as sources.
func New[T any](
	log *slog.Logger,
	sources []drx.Producer[T],
	cfg Config,
) (*Zip[T, []T], error) {
	return NewFunc(log, sources, func(vs []T) []T { return vs }, cfg)
}

// NewFunc returns a Zip that passes one value from each source to combine
// and emits the result.
// The argument to combine is freshly allocated for every emission.
func NewFunc[T, R any](
	log *slog.Logger,
	sources []drx.Producer[T],
	combine func([]T) R,
	cfg Config,
) (*Zip[T, R], error) {
	if len(sources) < 2 {
		return nil, drx.TooFewSourcesError{Count: len(sources)}
	}
	if cfg.Prefetch < 0 {
		return nil, drx.InvalidPrefetchError{Prefetch: cfg.Prefetch}
	}

	prefetch := cfg.Prefetch
	if prefetch == 0 {
		prefetch = 1
	}

	return &Zip[T, R]{
		log: log.With("zip", uuid.NewString()),

		// Own the slice, the caller may reuse theirs.
		sources: append([]drx.Producer[T](nil), sources...),
		combine: combine,

		prefetch: prefetch,
	}, nil
}

// Subscribe subscribes c to the combined output.
// Each call subscribes to every source anew.
func (z *Zip[T, R]) Subscribe(c drx.Consumer[R]) drx.Subscription {
	r := newRun(z, c)
	r.serial.Do(r.start)
	return r
}

// Pair is the value emitted by [Zip2].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the value emitted by [Zip3].
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Zip2 combines two producers of different types into a producer of pairs.
func Zip2[A, B any](
	log *slog.Logger,
	a drx.Producer[A],
	b drx.Producer[B],
	cfg Config,
) (*Zip[any, Pair[A, B]], error) {
	return NewFunc(
		log,
		[]drx.Producer[any]{erase(a), erase(b)},
		func(vs []any) Pair[A, B] {
			return Pair[A, B]{First: vs[0].(A), Second: vs[1].(B)}
		},
		cfg,
	)
}

// Zip3 combines three producers of different types into a producer of triples.
func Zip3[A, B, C any](
	log *slog.Logger,
	a drx.Producer[A],
	b drx.Producer[B],
	c drx.Producer[C],
	cfg Config,
) (*Zip[any, Triple[A, B, C]], error) {
	return NewFunc(
		log,
		[]drx.Producer[any]{erase(a), erase(b), erase(c)},
		func(vs []any) Triple[A, B, C] {
			return Triple[A, B, C]{First: vs[0].(A), Second: vs[1].(B), Third: vs[2].(C)}
		},
		cfg,
	)
}

// erase adapts a typed producer so that sources of
// different types can share one zip engine.
func erase[T any](p drx.Producer[T]) drx.Producer[any] {
	return drx.ProducerFunc[any](func(c drx.Consumer[any]) drx.Subscription {
		return p.Subscribe(erasedConsumer[T]{c: c})
	})
}

type erasedConsumer[T any] struct {
	c drx.Consumer[any]
}

func (e erasedConsumer[T]) OnSubscribe(sub drx.Subscription) { e.c.OnSubscribe(sub) }
func (e erasedConsumer[T]) OnValue(v T)                      { e.c.OnValue(v) }
func (e erasedConsumer[T]) OnComplete()                      { e.c.OnComplete() }
func (e erasedConsumer[T]) OnFailure(err error)              { e.c.OnFailure(err) }
