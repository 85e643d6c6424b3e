package syncstore

import (
	"context"
	"sync"
)

// Phase is the lifecycle position of one operation.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// Operation is the handle of one asynchronous store operation. It carries
// its own phase, result and error independent of the store-wide status.
type Operation[T any] struct {
	name string
	done chan struct{}

	mu     sync.Mutex
	phase  Phase
	result T
	err    error
}

func newOperation[T any](name string) *Operation[T] {
	return &Operation[T]{
		name:  name,
		done:  make(chan struct{}),
		phase: PhasePending,
	}
}

func (o *Operation[T]) Name() string { return o.name }

// Done is closed once the operation is fulfilled or rejected.
func (o *Operation[T]) Done() <-chan struct{} { return o.done }

func (o *Operation[T]) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Operation[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Result returns the outcome so far. Before Done is closed it is the zero
// value and a nil error.
func (o *Operation[T]) Result() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result, o.err
}

// Wait blocks until the operation settles or ctx ends.
func (o *Operation[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (o *Operation[T]) settle(result T, err error) {
	o.mu.Lock()
	if err != nil {
		o.phase = PhaseRejected
		o.err = err
	} else {
		o.phase = PhaseFulfilled
		o.result = result
	}
	o.mu.Unlock()
	close(o.done)
}
