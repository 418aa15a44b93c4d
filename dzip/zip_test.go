package dzip_test

import (
	"errors"
	"testing"

	"github.com/gordian-engine/drx"
	"github.com/gordian-engine/drx/drxtest"
	"github.com/gordian-engine/drx/dzip"
	"github.com/gordian-engine/drx/internal/dtest"
	"github.com/stretchr/testify/require"
)

var errOhNo = errors.New("oh no")

func TestZip_truncatesToShortest(t *testing.T) {
	t.Parallel()

	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{
		drxtest.NewSequence(1, 2, 3, 4),
		drxtest.NewSequence(10, 20),
		drxtest.NewSequence(100, 200, 300),
	}, dzip.Config{})
	require.NoError(t, err)

	r := drxtest.Record[[]int](z)

	require.Equal(t,
		drxtest.ThenComplete(drxtest.Values(
			[]int{1, 10, 100},
			[]int{2, 20, 200},
		)),
		r.Events(),
	)
}

func TestZip_randomLengths(t *testing.T) {
	t.Parallel()

	data := dtest.RandomDataForTest(t, 3*64)
	lens := dtest.RandomLengthsForTest(t, 3, 64)

	for _, prefetch := range []int{0, 1, 3} {
		seqs := make([][]byte, 3)
		sources := make([]drx.Producer[byte], 3)
		for i, n := range lens {
			seqs[i] = data[i*64 : i*64+n]
			sources[i] = drxtest.NewSequence(seqs[i]...)
		}

		z, err := dzip.New(dtest.NewLogger(t), sources, dzip.Config{Prefetch: prefetch})
		require.NoError(t, err)

		r := drxtest.Record[[]byte](z)

		shortest := min(lens[0], lens[1], lens[2])
		want := make([][]byte, shortest)
		for i := range want {
			want[i] = []byte{seqs[0][i], seqs[1][i], seqs[2][i]}
		}

		require.Equal(t, drxtest.ThenComplete(drxtest.Values(want...)), r.Events(), "prefetch=%d", prefetch)
	}
}

func TestZip_emptySourceCompletesImmediately(t *testing.T) {
	t.Parallel()

	a := drxtest.NewSubject[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{
		a,
		drxtest.NewSequence[int](),
	}, dzip.Config{})
	require.NoError(t, err)

	r := drxtest.Record[[]int](z)
	require.Equal(t, []drx.Event[[]int]{drx.Completion[[]int]()}, r.Events())

	// The still-running source was canceled.
	require.Zero(t, a.SubscriberCount())
}

func TestZip_completionWaitsForQueuedValues(t *testing.T) {
	t.Parallel()

	a := drxtest.NewSubject[int]()
	b := drxtest.NewSubject[string]()
	z, err := dzip.Zip2[int, string](dtest.NewLogger(t), a, b, dzip.Config{Prefetch: 2})
	require.NoError(t, err)

	r := drxtest.Record[dzip.Pair[int, string]](z)

	a.Send(1)
	a.Send(2)
	a.Complete()
	require.Empty(t, r.Events())

	b.Send("x")
	require.Equal(t, drxtest.Values(dzip.Pair[int, string]{First: 1, Second: "x"}), r.Events())
	require.Equal(t, 1, b.SubscriberCount())

	b.Send("y")
	require.Equal(t,
		drxtest.ThenComplete(drxtest.Values(
			dzip.Pair[int, string]{First: 1, Second: "x"},
			dzip.Pair[int, string]{First: 2, Second: "y"},
		)),
		r.Events(),
	)
	require.Zero(t, b.SubscriberCount())
}

func TestZip_failureIsImmediate(t *testing.T) {
	t.Parallel()

	a := drxtest.NewSubject[int]()
	b := drxtest.NewSubject[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{a, b}, dzip.Config{Prefetch: 2})
	require.NoError(t, err)

	r := drxtest.Record[[]int](z)

	a.Send(1)
	b.Send(10)
	a.Send(2) // Queued, never paired.
	b.Fail(errOhNo)

	require.Equal(t, drxtest.ThenFail(drxtest.Values([]int{1, 10}), errOhNo), r.Events())
	require.Zero(t, a.SubscriberCount())

	// Nothing follows the failure.
	a.Send(3)
	require.Len(t, r.Events(), 2)
}

func TestZip_failingSequence(t *testing.T) {
	t.Parallel()

	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{
		drxtest.FailingSequence(errOhNo, 1),
		drxtest.NewSequence(10, 20, 30),
	}, dzip.Config{})
	require.NoError(t, err)

	r := drxtest.Record[[]int](z)

	events := r.Events()
	require.NotEmpty(t, events)
	require.Equal(t, drx.Failure[[]int](errOhNo), events[len(events)-1])
	for _, e := range events[:len(events)-1] {
		require.Equal(t, drx.ValueOf([]int{1, 10}), e)
	}
}

func TestZip_downstreamDemandDrivesSources(t *testing.T) {
	t.Parallel()

	a := drxtest.NewSubject[int]()
	b := drxtest.NewSubject[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{a, b}, dzip.Config{})
	require.NoError(t, err)

	r := drxtest.NewRecorder[[]int](1)
	z.Subscribe(r)

	a.Send(1)
	b.Send(10)
	require.Equal(t, drxtest.Values([]int{1, 10}), r.Events())

	// No downstream demand, so nothing was requested from the sources
	// and the hot subjects drop these.
	a.Send(2)
	b.Send(20)

	r.Request(1)
	a.Send(3)
	b.Send(30)
	require.Equal(t, drxtest.Values([]int{1, 10}, []int{3, 30}), r.Events())
}

func TestZip_prefetchBoundsRequests(t *testing.T) {
	t.Parallel()

	a, pa := newCountingSource[int]()
	b, pb := newCountingSource[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{pa, pb}, dzip.Config{Prefetch: 3})
	require.NoError(t, err)

	r := drxtest.Record[[]int](z)

	require.Equal(t, drx.Demand(3), a.requested)
	require.Equal(t, drx.Demand(3), b.requested)

	// Values from one side only fill its queue; no more is requested.
	a.c.OnValue(1)
	a.c.OnValue(2)
	require.Equal(t, drx.Demand(3), a.requested)

	// Pairing consumes one from each side, and each is topped back up.
	b.c.OnValue(10)
	require.Equal(t, drxtest.Values([]int{1, 10}), r.Events())
	require.Equal(t, drx.Demand(4), a.requested)
	require.Equal(t, drx.Demand(4), b.requested)
}

func TestZip_valueWithoutDemandPanics(t *testing.T) {
	t.Parallel()

	a, pa := newCountingSource[int]()
	_, pb := newCountingSource[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{pa, pb}, dzip.Config{})
	require.NoError(t, err)

	_ = drxtest.Record[[]int](z)

	a.c.OnValue(1)
	require.Panics(t, func() {
		a.c.OnValue(2)
	})
}

func TestZip_valueAfterCompletionPanics(t *testing.T) {
	t.Parallel()

	a, pa := newCountingSource[int]()
	_, pb := newCountingSource[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{pa, pb}, dzip.Config{Prefetch: 2})
	require.NoError(t, err)

	_ = drxtest.Record[[]int](z)

	a.c.OnValue(1)
	a.c.OnComplete()
	require.Panics(t, func() {
		a.c.OnValue(2)
	})
}

func TestZip_cancelCancelsSources(t *testing.T) {
	t.Parallel()

	a := drxtest.NewSubject[int]()
	b := drxtest.NewSubject[int]()
	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{a, b}, dzip.Config{})
	require.NoError(t, err)

	r := drxtest.Record[[]int](z)
	require.Equal(t, 1, a.SubscriberCount())
	require.Equal(t, 1, b.SubscriberCount())

	r.Cancel()
	require.Zero(t, a.SubscriberCount())
	require.Zero(t, b.SubscriberCount())
	require.Empty(t, r.Events())
}

func TestZip_eachSubscriptionIsIndependent(t *testing.T) {
	t.Parallel()

	z, err := dzip.New(dtest.NewLogger(t), []drx.Producer[int]{
		drxtest.NewSequence(1, 2),
		drxtest.NewSequence(3, 4),
	}, dzip.Config{})
	require.NoError(t, err)

	r1 := drxtest.Record[[]int](z)
	r2 := drxtest.Record[[]int](z)

	want := drxtest.ThenComplete(drxtest.Values([]int{1, 3}, []int{2, 4}))
	require.Equal(t, want, r1.Events())
	require.Equal(t, want, r2.Events())
}

func TestZip3(t *testing.T) {
	t.Parallel()

	z, err := dzip.Zip3[int, string, bool](
		dtest.NewLogger(t),
		drxtest.NewSequence(1, 2),
		drxtest.NewSequence("a", "b"),
		drxtest.NewSequence(true),
		dzip.Config{},
	)
	require.NoError(t, err)

	r := drxtest.Record[dzip.Triple[int, string, bool]](z)
	require.Equal(t,
		drxtest.ThenComplete(drxtest.Values(
			dzip.Triple[int, string, bool]{First: 1, Second: "a", Third: true},
		)),
		r.Events(),
	)
}

func TestNew_invalidConfig(t *testing.T) {
	t.Parallel()

	log := dtest.NewLogger(t)

	_, err := dzip.New(log, []drx.Producer[int]{drxtest.NewSequence(1)}, dzip.Config{})
	var srcErr drx.TooFewSourcesError
	require.ErrorAs(t, err, &srcErr)
	require.Equal(t, 1, srcErr.Count)

	_, err = dzip.New[int](log, nil, dzip.Config{})
	require.ErrorAs(t, err, &srcErr)
	require.Zero(t, srcErr.Count)

	_, err = dzip.New(log, []drx.Producer[int]{
		drxtest.NewSequence(1), drxtest.NewSequence(2),
	}, dzip.Config{Prefetch: -1})
	var pfErr drx.InvalidPrefetchError
	require.ErrorAs(t, err, &pfErr)
}

// countingSource is a producer whose consumer the test drives directly,
// recording the total demand requested of it.
type countingSource[T any] struct {
	c         drx.Consumer[T]
	requested drx.Demand
	canceled  bool
}

func newCountingSource[T any]() (*countingSource[T], drx.Producer[T]) {
	s := new(countingSource[T])
	return s, drx.ProducerFunc[T](func(c drx.Consumer[T]) drx.Subscription {
		s.c = c
		c.OnSubscribe(s)
		return s
	})
}

func (s *countingSource[T]) Request(n drx.Demand) {
	drx.CheckRequest(n)
	s.requested = s.requested.Add(n)
}

func (s *countingSource[T]) Cancel() {
	s.canceled = true
}
