package dstream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gordian-engine/dstream"
	"github.com/gordian-engine/dstream/dpubsub"
	"github.com/gordian-engine/dstream/internal/dtest"
	"github.com/stretchr/testify/require"
)

func TestOf_stopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var got []int
	dstream.Of(1, 2, 3).Subscribe(ctx, dstream.ObserverFuncs[int]{
		Next: func(v int) {
			got = append(got, v)
			if v == 2 {
				cancel()
			}
		},
		Complete: func() { t.Fatal("should not complete after cancel") },
	})

	require.Equal(t, []int{1, 2}, got)
}

func TestFromFunc(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	v, err := dpubsub.Subscribe(ctx, dstream.FromFunc(func(context.Context) (string, error) {
		return "ok", nil
	})).Last(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", v)

	boom := errors.New("boom")
	_, err = dpubsub.Subscribe(ctx, dstream.FromFunc(func(context.Context) (string, error) {
		return "", boom
	})).Last(ctx)
	require.ErrorIs(t, err, boom)
}

func TestTimer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := dpubsub.Subscribe(ctx, dstream.Timer(time.Millisecond))
	dtest.ReceiveSoon(t, s.Ready)
	dtest.ReceiveSoon(t, s.Next.Ready)
	require.True(t, s.Next.Done)
}

func TestPipe_appliesInOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var order []string
	tag := func(name string) dstream.Operator[int] {
		return func(src dstream.Observable[int]) dstream.Observable[int] {
			order = append(order, name)
			return src
		}
	}

	vals, err := dpubsub.Subscribe(ctx, dstream.Pipe(dstream.Of(1), tag("a"), tag("b"))).Collect(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1}, vals)
	require.Equal(t, []string{"a", "b"}, order)
}
