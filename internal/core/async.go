package core

import (
	"context"
	"fmt"
	"time"
)

// future is the pending result of a call started with goBounded
type future[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	val    T
	err    error
}

// goBounded runs fn in its own goroutine under a context that expires after
// timeout (no deadline when timeout <= 0). Await never blocks past that
// deadline; an abandoned call sees its context cancelled.
func goBounded[T any](parent context.Context, timeout time.Duration, fn func(context.Context) (T, error)) *future[T] {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	f := &future[T]{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("panic in background call: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Await returns the call result, or the context error once the deadline passes
func (f *future[T]) Await() (T, error) {
	defer f.cancel()

	select {
	case <-f.done:
		return f.val, f.err
	case <-f.ctx.Done():
		// Prefer a result that landed at the same moment
		select {
		case <-f.done:
			return f.val, f.err
		default:
		}
		var zero T
		return zero, f.ctx.Err()
	}
}
