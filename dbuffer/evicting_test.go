package dbuffer_test

import (
	"slices"
	"testing"

	"github.com/gordian-engine/dstream/dbuffer"
	"github.com/gordian-engine/dstream/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestNewEvicting_panicsOnZeroCapacity(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = dbuffer.NewEvicting[int](0)
	})
}

func TestEvicting_Push(t *testing.T) {
	t.Parallel()

	t.Run("under capacity keeps everything", func(t *testing.T) {
		t.Parallel()

		b := dbuffer.NewEvicting[int](3)
		_, ok := b.Push(1)
		require.False(t, ok)
		_, ok = b.Push(2)
		require.False(t, ok)

		require.Equal(t, 2, b.Len())
		require.Equal(t, 3, b.Cap())
		require.Equal(t, []int{1, 2}, slices.Collect(b.All()))
	})

	t.Run("over capacity drops oldest", func(t *testing.T) {
		t.Parallel()

		b := dbuffer.NewEvicting[int](3)
		for i := range 3 {
			b.Push(i)
		}

		ev, ok := b.Push(3)
		require.True(t, ok)
		require.Equal(t, 0, ev)

		ev, ok = b.Push(4)
		require.True(t, ok)
		require.Equal(t, 1, ev)

		require.Equal(t, 3, b.Len())
		require.Equal(t, []int{2, 3, 4}, slices.Collect(b.All()))
	})

	t.Run("capacity one holds latest", func(t *testing.T) {
		t.Parallel()

		b := dbuffer.NewEvicting[string](1)
		b.Push("a")
		b.Push("b")
		b.Push("c")

		require.Equal(t, []string{"c"}, slices.Collect(b.All()))
	})
}

func TestEvicting_Push_retainsMostRecent(t *testing.T) {
	t.Parallel()

	vals := dtest.RandomIntsForTest(t, 100, 1000)

	for _, capacity := range []int{1, 2, 7, 64, 100} {
		b := dbuffer.NewEvicting[int](capacity)
		for _, v := range vals {
			b.Push(v)
		}

		require.Equal(t, vals[len(vals)-capacity:], slices.Collect(b.All()), "capacity %d", capacity)
	}
}

func TestEvicting_Filter(t *testing.T) {
	t.Parallel()

	b := dbuffer.NewEvicting[int](4)
	for i := range 6 {
		b.Push(i)
	}

	even := func(v int) bool { return v%2 == 0 }
	require.Equal(t, []int{2, 4}, slices.Collect(b.Filter(even)))

	// The view does not consume or reorder the buffer.
	require.Equal(t, []int{2, 3, 4, 5}, slices.Collect(b.All()))

	// The view is lazy, so it reflects later pushes.
	view := b.Filter(even)
	b.Push(6)
	require.Equal(t, []int{4, 6}, slices.Collect(view))
}

func TestEvicting_Filter_stopsEarly(t *testing.T) {
	t.Parallel()

	b := dbuffer.NewEvicting[int](4)
	for i := range 4 {
		b.Push(i)
	}

	var seen []int
	for v := range b.Filter(func(int) bool { return true }) {
		seen = append(seen, v)
		if v == 1 {
			break
		}
	}
	require.Equal(t, []int{0, 1}, seen)
}

func TestEvicting_Clear(t *testing.T) {
	t.Parallel()

	b := dbuffer.NewEvicting[int](2)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	b.Clear()

	require.Zero(t, b.Len())
	require.Empty(t, slices.Collect(b.All()))

	b.Push(4)
	require.Equal(t, []int{4}, slices.Collect(b.All()))
}
