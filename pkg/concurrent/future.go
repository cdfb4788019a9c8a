package concurrent

import (
	"context"
	"fmt"
)

// Future is the completion signal of a background task. It resolves exactly once,
// with either a value or an error.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on a new goroutine. a panic inside fn resolves the future with an error.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("background task panicked: %v", r)
			}
		}()
		f.val, f.err = fn()
	}()
	return f
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task resolves or ctx is done. cancelling ctx does not stop the task.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then calls cb once with the outcome, on its own goroutine.
func (f *Future[T]) Then(cb func(T, error)) {
	go func() {
		<-f.done
		cb(f.val, f.err)
	}()
}
