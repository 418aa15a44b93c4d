package dident_test

import (
	"testing"

	"github.com/gordian-engine/drx/internal/dident"
	"github.com/stretchr/testify/require"
)

func TestNew_unique(t *testing.T) {
	t.Parallel()

	seen := make(map[dident.Identity]struct{})
	for range 1000 {
		id := dident.New()
		require.False(t, id.IsZero())
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestRegistry_order(t *testing.T) {
	t.Parallel()

	r := dident.NewRegistry[string]()
	a, b, c := dident.New(), dident.New(), dident.New()
	r.Add(b, "b")
	r.Add(a, "a")
	r.Add(c, "c")

	require.Equal(t, []string{"b", "a", "c"}, collect(r))

	require.True(t, r.Remove(a))
	require.False(t, r.Remove(a))
	require.Equal(t, []string{"b", "c"}, collect(r))
	require.Equal(t, 2, r.Len())

	v, ok := r.Get(c)
	require.True(t, ok)
	require.Equal(t, "c", v)

	_, ok = r.Get(a)
	require.False(t, ok)
}

func TestRegistry_Add_panicsOnDuplicate(t *testing.T) {
	t.Parallel()

	r := dident.NewRegistry[int]()
	id := dident.New()
	r.Add(id, 1)

	require.Panics(t, func() {
		r.Add(id, 2)
	})
	require.Panics(t, func() {
		r.Add(dident.Identity{}, 3)
	})
}

func TestRegistry_All_removeDuringIteration(t *testing.T) {
	t.Parallel()

	r := dident.NewRegistry[int]()
	ids := []dident.Identity{dident.New(), dident.New(), dident.New()}
	for i, id := range ids {
		r.Add(id, i)
	}

	var got []int
	for id, v := range r.All() {
		got = append(got, v)
		if id == ids[0] {
			// Removing a later entry means it is skipped.
			r.Remove(ids[1])
		}
	}

	require.Equal(t, []int{0, 2}, got)
}

type identified struct {
	id dident.Identity
}

func (i identified) Identity() dident.Identity { return i.id }

func TestKeyed(t *testing.T) {
	t.Parallel()

	a, b := identified{id: dident.New()}, identified{id: dident.New()}
	m := dident.Keyed([]identified{a, b})
	require.Len(t, m, 2)
	require.Equal(t, a, m[a.id])
	require.Equal(t, b, m[b.id])
}

func TestKeyed_panicsOnCollision(t *testing.T) {
	t.Parallel()

	a := identified{id: dident.New()}
	require.Panics(t, func() {
		_ = dident.Keyed([]identified{a, {id: dident.New()}, a})
	})
}

func collect[V any](r *dident.Registry[V]) []V {
	var out []V
	for _, v := range r.All() {
		out = append(out, v)
	}
	return out
}
