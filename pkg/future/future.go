// Package future provides a minimal single-assignment promise used to hand
// asynchronous command results back to the agent.
package future

import (
	"context"
	"fmt"
	"sync"
)

// Future is a read-only handle on a value that becomes available later.
type Future[T any] interface {
	// Get blocks until the value is available or ctx is done.
	Get(ctx context.Context) (T, error)
	// Done is closed once the value or error has been set.
	Done() <-chan struct{}
}

// Promise is the writable side of a Future. Only the first Resolve or Reject
// takes effect; later calls are ignored.
type Promise[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New creates an unresolved promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Resolved returns a future that already holds value.
func Resolved[T any](value T) Future[T] {
	p := New[T]()
	p.Resolve(value)

	return p
}

// Rejected returns a future that already failed with err.
func Rejected[T any](err error) Future[T] {
	p := New[T]()
	p.Reject(err)

	return p
}

// Go runs fn on a new goroutine and returns a future for its result.
//
// A panic inside fn rejects the future instead of crashing the process.
func Go[T any](fn func() (T, error)) Future[T] {
	p := New[T]()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.Reject(fmt.Errorf("%w: %v", errPanicked, r))
			}
		}()

		value, err := fn()
		if err != nil {
			p.Reject(err)

			return
		}

		p.Resolve(value)
	}()

	return p
}

// Resolve fulfills the promise with value.
//
// Returns:
//   - bool: True if this call settled the promise.
func (p *Promise[T]) Resolve(value T) bool {
	settled := false

	p.once.Do(func() {
		p.value = value
		settled = true

		close(p.done)
	})

	return settled
}

// Reject fails the promise with err.
//
// Returns:
//   - bool: True if this call settled the promise.
func (p *Promise[T]) Reject(err error) bool {
	settled := false

	p.once.Do(func() {
		p.err = err
		settled = true

		close(p.done)
	})

	return settled
}

// Done is closed once the promise is settled.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Get waits for the promise to settle.
func (p *Promise[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T

		return zero, fmt.Errorf("%w: %w", errWaitAborted, ctx.Err())
	}
}
