package dops

import (
	"context"

	"github.com/gordian-engine/dstream"
)

// Map returns a transform applying fn to every value of its source.
func Map[T, U any](fn func(T) U) func(dstream.Observable[T]) dstream.Observable[U] {
	return func(src dstream.Observable[T]) dstream.Observable[U] {
		return dstream.ObservableFunc[U](func(ctx context.Context, o dstream.Observer[U]) {
			src.Subscribe(ctx, dstream.ObserverFuncs[T]{
				Next:     func(v T) { o.OnNext(fn(v)) },
				Error:    o.OnError,
				Complete: o.OnComplete,
			})
		})
	}
}
