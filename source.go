package dstream

import (
	"context"
	"time"
)

// Of returns an Observable that synchronously emits vals in order
// and then completes.
// Emission stops early if the subscriber's context is cancelled.
func Of[T any](vals ...T) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) {
		for _, v := range vals {
			if ctx.Err() != nil {
				return
			}
			o.OnNext(v)
		}
		if ctx.Err() != nil {
			return
		}
		o.OnComplete()
	})
}

// Empty returns an Observable that completes immediately.
func Empty[T any]() Observable[T] {
	return Of[T]()
}

// Fail returns an Observable that immediately reports err.
func Fail[T any](err error) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) {
		if ctx.Err() != nil {
			return
		}
		o.OnError(err)
	})
}

// FromChannel returns an Observable that, for each subscriber,
// starts a background goroutine forwarding values received on ch.
//
// The subscriber is completed when ch is closed.
// The goroutine stops without notifying the subscriber
// when the subscription context is cancelled.
//
// Multiple subscribers compete for the values on ch;
// share the result through a multicaster if every consumer
// needs to observe every value.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) {
		go runChannelToObserver(ctx, ch, o)
	})
}

func runChannelToObserver[T any](
	ctx context.Context,
	ch <-chan T,
	o Observer[T],
) {
	for {
		select {
		case <-ctx.Done():
			return

		case v, ok := <-ch:
			if !ok {
				o.OnComplete()
				return
			}
			o.OnNext(v)
		}
	}
}

// FromFunc returns an Observable that calls fn in a background goroutine
// once per subscriber, emitting its result and completing,
// or reporting its error.
//
// The context passed to fn is the subscription context.
func FromFunc[T any](fn func(context.Context) (T, error)) Observable[T] {
	return ObservableFunc[T](func(ctx context.Context, o Observer[T]) {
		go func() {
			v, err := fn(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				o.OnError(err)
				return
			}
			o.OnNext(v)
			o.OnComplete()
		}()
	})
}

// Timer returns an Observable that emits a single signal
// after d has elapsed, and then completes.
func Timer(d time.Duration) Observable[struct{}] {
	return ObservableFunc[struct{}](func(ctx context.Context, o Observer[struct{}]) {
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()

			select {
			case <-ctx.Done():
				return
			case <-t.C:
				o.OnNext(struct{}{})
				o.OnComplete()
			}
		}()
	})
}
