package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Search string
	Page   int
}

func TestQueryWatchRunsOnChangeOnly(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(context.Background(), func(_ context.Context, p page) ([]string, int64, error) {
		calls.Add(1)
		return []string{p.Search}, 42, nil
	})

	assert.True(t, q.Watch(page{Search: "a", Page: 1}))
	q.Wait()
	assert.False(t, q.Watch(page{Search: "a", Page: 1}))
	assert.True(t, q.Watch(page{Search: "a", Page: 2}))
	q.Wait()

	state := q.State()
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"a"}, state.Data)
	assert.EqualValues(t, 42, state.Count)
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
}

func TestQueryRefetchForcesCall(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(context.Background(), func(context.Context, int) (int32, int64, error) {
		return calls.Add(1), 0, nil
	})

	assert.Equal(t, int32(1), q.Load(7).Data)
	q.Refetch()
	q.Wait()
	assert.Equal(t, int32(2), q.State().Data)
}

func TestQuerySuppressesStaleResponse(t *testing.T) {
	release := map[string]chan struct{}{
		"old": make(chan struct{}),
		"new": make(chan struct{}),
	}
	q := NewQuery(context.Background(), func(_ context.Context, key string) (string, int64, error) {
		<-release[key]
		return key, 0, nil
	})

	q.Watch("old")
	q.Watch("new")
	assert.True(t, q.State().Loading)

	close(release["new"])
	close(release["old"])
	q.Wait()

	state := q.State()
	assert.Equal(t, "new", state.Data)
	assert.False(t, state.Loading)
}

func TestQueryCancelsSupersededCall(t *testing.T) {
	cancelled := make(chan error, 1)
	q := NewQuery(context.Background(), func(ctx context.Context, key string) (string, int64, error) {
		if key == "slow" {
			<-ctx.Done()
			cancelled <- ctx.Err()
			return "", 0, ctx.Err()
		}
		return key, 0, nil
	})

	q.Watch("slow")
	q.Watch("fast")
	q.Wait()

	assert.ErrorIs(t, <-cancelled, context.Canceled)
	state := q.State()
	assert.Equal(t, "fast", state.Data)
	assert.NoError(t, state.Err)
}

func TestQueryErrorClearsData(t *testing.T) {
	fail := false
	q := NewQuery(context.Background(), func(context.Context, int) (string, int64, error) {
		if fail {
			return "partial", 3, errors.New("backend down")
		}
		return "ok", 1, nil
	})

	require.Equal(t, "ok", q.Load(1).Data)
	fail = true
	state := q.Load(2)
	assert.EqualError(t, state.Err, "backend down")
	assert.Empty(t, state.Data)
	assert.Zero(t, state.Count)
}

func TestMutationTracksErrorAndCallsHook(t *testing.T) {
	var refreshed []int
	m := NewMutation(func(_ context.Context, in int) (int, error) {
		if in < 0 {
			return 0, errors.New("negative")
		}
		return in * 2, nil
	}, func(out int) { refreshed = append(refreshed, out) })

	out, err := m.Invoke(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 8, out)
	assert.NoError(t, m.Err())
	assert.False(t, m.Loading())

	_, err = m.Invoke(context.Background(), -1)
	assert.Error(t, err)
	assert.EqualError(t, m.Err(), "negative")
	assert.Equal(t, []int{8}, refreshed)
}
