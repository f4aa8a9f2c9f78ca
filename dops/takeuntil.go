package dops

import (
	"context"
	"errors"

	"github.com/gordian-engine/dstream"
)

// errStopped is the cancellation cause given to the source subscription
// when TakeUntil's notifier fires.
var errStopped = errors.New("stop signal received")

// TakeUntil mirrors the source until notifier emits its first value,
// at which point the output completes and the source subscription is released.
//
// A notifier that completes without emitting has no effect.
// A notifier error is forwarded to the output.
func TakeUntil[T, S any](notifier dstream.Observable[S]) dstream.Operator[T] {
	return func(src dstream.Observable[T]) dstream.Observable[T] {
		return dstream.ObservableFunc[T](func(ctx context.Context, o dstream.Observer[T]) {
			out := dstream.Serialized(dstream.Guard(ctx, o))

			inner, cancel := context.WithCancelCause(ctx)

			notifier.Subscribe(inner, dstream.ObserverFuncs[S]{
				Next: func(S) {
					cancel(errStopped)
					out.OnComplete()
				},
				Error: func(err error) {
					cancel(err)
					out.OnError(err)
				},
			})

			if inner.Err() != nil {
				// Notifier fired synchronously.
				return
			}

			src.Subscribe(inner, dstream.ObserverFuncs[T]{
				Next: out.OnNext,
				Error: func(err error) {
					cancel(err)
					out.OnError(err)
				},
				Complete: func() {
					cancel(nil)
					out.OnComplete()
				},
			})
		})
	}
}
