package fetch

import (
	"context"
	"sync"
)

// Mutation runs a single write with loading and error tracking. There is no retry.
type Mutation[In, Out any] struct {
	run       func(ctx context.Context, in In) (Out, error)
	onSuccess func(Out)

	mu      sync.Mutex
	loading int
	err     error
}

// NewMutation builds a mutation. onSuccess, when set, runs after every
// successful call, typically to refetch the queries the write affects.
func NewMutation[In, Out any](run func(context.Context, In) (Out, error), onSuccess func(Out)) *Mutation[In, Out] {
	return &Mutation[In, Out]{run: run, onSuccess: onSuccess}
}

func (m *Mutation[In, Out]) Invoke(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.loading++
	m.err = nil
	m.mu.Unlock()

	out, err := m.run(ctx, in)

	m.mu.Lock()
	m.loading--
	m.err = err
	m.mu.Unlock()

	if err == nil && m.onSuccess != nil {
		m.onSuccess(out)
	}
	return out, err
}

func (m *Mutation[In, Out]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading > 0
}

func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}
