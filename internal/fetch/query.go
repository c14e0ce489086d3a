// Package fetch wraps store calls with loading and error state for dashboard panels.
package fetch

import (
	"context"
	"sync"
)

// Fetcher loads a value for params. count is the total row count when the
// call is a paginated list and 0 otherwise.
type Fetcher[P comparable, T any] func(ctx context.Context, params P) (data T, count int64, err error)

// State is a snapshot of a query.
type State[T any] struct {
	Data    T
	Count   int64
	Loading bool
	Err     error
}

// Query re-runs its fetcher when the watched params change. Only the most
// recently started call may update state; results of superseded calls are
// discarded and their contexts cancelled.
type Query[P comparable, T any] struct {
	base  context.Context
	fetch Fetcher[P, T]

	mu      sync.Mutex
	state   State[T]
	params  P
	started bool
	gen     uint64
	cancel  context.CancelFunc
	running int
	idle    *sync.Cond
}

func NewQuery[P comparable, T any](ctx context.Context, fetch Fetcher[P, T]) *Query[P, T] {
	q := &Query[P, T]{base: ctx, fetch: fetch}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Watch starts a call when params differ from the last watched value or
// nothing has run yet. It reports whether a call was started.
func (q *Query[P, T]) Watch(params P) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started && params == q.params {
		return false
	}
	q.params = params
	q.startLocked()
	return true
}

// Refetch re-runs the fetcher with the last watched params.
func (q *Query[P, T]) Refetch() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.startLocked()
}

func (q *Query[P, T]) startLocked() {
	q.started = true
	q.gen++
	gen := q.gen
	if q.cancel != nil {
		q.cancel()
	}
	ctx, cancel := context.WithCancel(q.base)
	q.cancel = cancel
	q.state.Loading = true
	params := q.params

	q.running++
	go func() {
		defer cancel()
		data, count, err := q.fetch(ctx, params)

		q.mu.Lock()
		defer q.mu.Unlock()
		q.running--
		if q.running == 0 {
			q.idle.Broadcast()
		}
		if gen != q.gen {
			return
		}
		q.state = State[T]{Data: data, Count: count, Err: err}
		if err != nil {
			var zero T
			q.state.Data = zero
			q.state.Count = 0
		}
	}()
}

func (q *Query[P, T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Wait blocks until every started call has returned.
func (q *Query[P, T]) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.running > 0 {
		q.idle.Wait()
	}
}

// Load runs the query for params and waits for the result.
func (q *Query[P, T]) Load(params P) State[T] {
	q.Watch(params)
	q.Wait()
	return q.State()
}
