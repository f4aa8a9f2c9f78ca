package dops_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gordian-engine/dstream"
	"github.com/gordian-engine/dstream/dops"
	"github.com/gordian-engine/dstream/dpubsub"
	"github.com/gordian-engine/dstream/dsubject"
	"github.com/gordian-engine/dstream/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestTakeUntil_stopsOnTakeSubject(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Unbuffered so we know sends are received.
	ch := make(chan int)
	stop := dsubject.NewTakeSubject[struct{}](1)

	var stopCompleted bool
	stop.Subscribe(ctx, dstream.ObserverFuncs[struct{}]{
		Complete: func() { stopCompleted = true },
	})

	s := dpubsub.Subscribe(ctx, dstream.Pipe(
		dstream.FromChannel(ch),
		dops.TakeUntil[int, struct{}](stop),
	))

	dtest.SendSoon(t, ch, 1)
	dtest.SendSoon(t, ch, 2)

	dtest.ReceiveSoon(t, s.Ready)
	dtest.ReceiveSoon(t, s.Next.Ready)

	stop.OnNext(struct{}{})
	require.True(t, stopCompleted)

	vals, err := s.Collect(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, vals)

	// The source subscription was released, so nobody reads the channel.
	select {
	case ch <- 3:
		t.Fatal("source should have stopped reading")
	default:
		// Okay.
	}
}

func TestTakeUntil_notifierAlreadyTerminated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("completed notifier has no effect", func(t *testing.T) {
		t.Parallel()

		vals, err := dpubsub.Subscribe(ctx, dstream.Pipe(
			dstream.Of(1, 2),
			dops.TakeUntil[int](dstream.Empty[struct{}]()),
		)).Collect(ctx)
		require.NoError(t, err)
		require.Equal(t, []int{1, 2}, vals)
	})

	t.Run("synchronous signal stops before subscribing source", func(t *testing.T) {
		t.Parallel()

		var subscribed bool
		src := dstream.ObservableFunc[int](func(ctx context.Context, o dstream.Observer[int]) {
			subscribed = true
			o.OnComplete()
		})

		vals, err := dpubsub.Subscribe(ctx, dstream.Pipe(
			src,
			dops.TakeUntil[int](dstream.Of(struct{}{})),
		)).Collect(ctx)
		require.NoError(t, err)
		require.Empty(t, vals)
		require.False(t, subscribed)
	})

	t.Run("notifier error is forwarded", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := dpubsub.Subscribe(ctx, dstream.Pipe(
			dstream.Of(1, 2),
			dops.TakeUntil[int](dstream.Fail[struct{}](boom)),
		)).Collect(ctx)
		require.ErrorIs(t, err, boom)
	})
}

func TestMap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	letters := dops.Map(func(v int) string { return string(rune('a' + v)) })
	vals, err := dpubsub.Subscribe(ctx, letters(dstream.Of(0, 1, 2))).Collect(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, vals)
}
