package session

import (
	"context"
	"sync"
)

// Task is the pending result of one durable operation.
// It resolves exactly once.
type Task[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// failed returns a task already resolved with err.
func failed[T any](err error) *Task[T] {
	t := newTask[T]()
	var zero T
	t.resolve(zero, err)
	return t
}

func (t *Task[T]) resolve(value T, err error) {
	t.once.Do(func() {
		t.value = value
		t.err = err
		close(t.done)
	})
}

// Done is closed once the task has resolved.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx is done.
// Cancelling ctx stops the wait, not the operation.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
