package dsubject_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gordian-engine/dstream"
	"github.com/gordian-engine/dstream/dpubsub"
	"github.com/gordian-engine/dstream/dsubject"
	"github.com/gordian-engine/dstream/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestSubject_fansOut(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := dsubject.NewSubject[int]()
	a := dpubsub.Subscribe[int](ctx, s)

	s.OnNext(1)

	// Late subscribers only see later values.
	b := dpubsub.Subscribe[int](ctx, s)
	s.OnNext(2)
	s.OnComplete()

	aVals, err := a.Collect(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, aVals)

	bVals, err := b.Collect(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{2}, bVals)
}

func TestSubject_terminated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("late subscriber receives completion", func(t *testing.T) {
		t.Parallel()

		s := dsubject.NewSubject[int]()
		s.OnComplete()
		s.OnNext(1)

		vals, err := dpubsub.Subscribe[int](ctx, s).Collect(ctx)
		require.NoError(t, err)
		require.Empty(t, vals)
	})

	t.Run("late subscriber receives error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		s := dsubject.NewSubject[int]()
		s.OnError(boom)
		s.OnComplete()

		_, err := dpubsub.Subscribe[int](ctx, s).Collect(ctx)
		require.ErrorIs(t, err, boom)
	})
}

func TestSubject_unsubscribe(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := dsubject.NewSubject[int]()

	subCtx, subCancel := context.WithCancel(ctx)
	var got []int
	s.Subscribe(subCtx, dstream.ObserverFuncs[int]{
		Next: func(v int) { got = append(got, v) },
	})
	require.Equal(t, 1, s.Len())

	s.OnNext(1)
	subCancel()

	// The guard drops values immediately, even before removal.
	s.OnNext(2)
	require.Equal(t, []int{1}, got)

	require.Eventually(t, func() bool {
		return s.Len() == 0
	}, dtest.ScheduleDuration, 10*time.Millisecond)
}

func TestTakeSubject(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		take  int
		nexts int
	}{
		{name: "default of one", take: 0, nexts: 1},
		{name: "three", take: 3, nexts: 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s := dsubject.NewTakeSubject[int](tc.take)

			var nexted, completed bool
			s.Subscribe(ctx, dstream.ObserverFuncs[int]{
				Next:     func(int) { nexted = true },
				Complete: func() { completed = true },
			})
			last := dpubsub.Subscribe[int](ctx, s)

			for i := range tc.nexts {
				require.False(t, completed, "completed early at %d", i)
				s.OnNext(i)
			}

			require.True(t, nexted)
			require.True(t, completed)

			v, err := last.Last(ctx)
			require.NoError(t, err)
			require.Equal(t, tc.nexts-1, v)

			// Further values are counted but not forwarded.
			s.OnNext(99)
			require.Equal(t, tc.nexts+1, s.Takes())
		})
	}
}
