package dops

import (
	"context"
	"errors"

	"github.com/gordian-engine/dstream"
	"go.uber.org/atomic"
)

// ErrActionIndirection is reported by [BeforeComplete]
// when a [Deferred] action produces another Deferred action.
var ErrActionIndirection = errors.New("deferred action produced another deferred action")

// Action is work that [BeforeComplete] runs to completion
// between its source completing and its output completing.
//
// The set of actions is closed:
// use [Do], [Await], [Drain], or [Deferred].
type Action interface {
	run(ctx context.Context, done func(error), deferred bool)
}

// Do returns an Action that synchronously calls fn.
func Do(fn func()) Action {
	return doAction(fn)
}

type doAction func()

func (a doAction) run(_ context.Context, done func(error), _ bool) {
	a()
	done(nil)
}

// Await returns an Action that calls fn in a background goroutine
// and finishes when fn returns.
// A non-nil error from fn is forwarded in place of completion.
//
// The context passed to fn is cancelled when the output is unsubscribed.
func Await(fn func(context.Context) error) Action {
	return awaitAction(fn)
}

type awaitAction func(context.Context) error

func (a awaitAction) run(ctx context.Context, done func(error), _ bool) {
	go func() {
		done(a(ctx))
	}()
}

// Drain returns an Action that subscribes to obs,
// ignores its values, and finishes when obs terminates.
// An error from obs is forwarded in place of completion.
func Drain[S any](obs dstream.Observable[S]) Action {
	return drainAction[S]{obs: obs}
}

type drainAction[S any] struct {
	obs dstream.Observable[S]
}

func (a drainAction[S]) run(ctx context.Context, done func(error), _ bool) {
	var finished atomic.Bool
	finish := func(err error) {
		if finished.CompareAndSwap(false, true) {
			done(err)
		}
	}

	a.obs.Subscribe(ctx, dstream.ObserverFuncs[S]{
		Error:    finish,
		Complete: func() { finish(nil) },
	})
}

// Deferred returns an Action that calls fn when the source completes,
// and then runs the Action that fn returns.
// If fn returns nil, Deferred behaves like [Do].
//
// Only one level of indirection is resolved:
// if fn returns another Deferred action,
// [ErrActionIndirection] is forwarded instead of completion.
func Deferred(fn func() Action) Action {
	return deferredAction(fn)
}

type deferredAction func() Action

func (a deferredAction) run(ctx context.Context, done func(error), deferred bool) {
	if deferred {
		done(ErrActionIndirection)
		return
	}

	next := a()
	if next == nil {
		done(nil)
		return
	}

	next.run(ctx, done, true)
}

// BeforeComplete mirrors its source's values and errors,
// but when the source completes it first runs a to completion,
// and only then completes the output.
//
// Source errors are forwarded without running a.
// If a fails, its error is forwarded instead of completion.
// A nil a completes the output directly.
func BeforeComplete[T any](a Action) dstream.Operator[T] {
	return func(src dstream.Observable[T]) dstream.Observable[T] {
		return dstream.ObservableFunc[T](func(ctx context.Context, o dstream.Observer[T]) {
			out := dstream.Guard(ctx, o)

			src.Subscribe(ctx, dstream.ObserverFuncs[T]{
				Next:  out.OnNext,
				Error: out.OnError,
				Complete: func() {
					if a == nil {
						out.OnComplete()
						return
					}

					a.run(ctx, func(err error) {
						if err != nil {
							out.OnError(err)
							return
						}
						out.OnComplete()
					}, false)
				},
			})
		})
	}
}
