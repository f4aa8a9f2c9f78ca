package dstream

import "context"

// Observer receives the notifications of an [Observable].
//
// OnNext may be called any number of times,
// followed by at most one call to either OnError or OnComplete.
// Calls to a single Observer are never concurrent,
// although they may arrive on different goroutines.
type Observer[T any] interface {
	OnNext(T)
	OnError(error)
	OnComplete()
}

// Observable is a push-based source of values.
//
// Subscribe may deliver notifications synchronously,
// before returning, or later from another goroutine.
// Implementations must not block in Subscribe waiting for values.
//
// Cancelling ctx detaches o.
// After detachment the Observable should stop producing promptly,
// but o may still observe calls that were already in flight;
// wrap o with [Guard] where that matters.
type Observable[T any] interface {
	Subscribe(ctx context.Context, o Observer[T])
}

// ObservableFunc adapts a plain function to the [Observable] interface.
type ObservableFunc[T any] func(ctx context.Context, o Observer[T])

func (f ObservableFunc[T]) Subscribe(ctx context.Context, o Observer[T]) {
	f(ctx, o)
}

// Operator transforms one Observable into another of the same type.
type Operator[T any] func(Observable[T]) Observable[T]

// Pipe applies each operator to src in order.
func Pipe[T any](src Observable[T], ops ...Operator[T]) Observable[T] {
	for _, op := range ops {
		src = op(src)
	}
	return src
}

// ObserverFuncs is an [Observer] built from optional callbacks.
// A nil callback ignores the corresponding notification.
type ObserverFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

func (o ObserverFuncs[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o ObserverFuncs[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}
