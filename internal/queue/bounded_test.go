package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestRunBoundedDrainsPool(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c", "d", "e"}}
	runner := NewRunner[string]("test", source, func(_ context.Context, _ string) error {
		return nil
	}, ident, nil, nil)

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	summary, err := runner.runBounded(context.Background(), BoundedConfig{
		BatchSize: 2,
		Budget:    time.Minute,
	}, func() time.Time { return clock }, noSleep)
	require.NoError(t, err)
	require.True(t, summary.Drained)
	require.Equal(t, 5, summary.Claimed)
	require.Equal(t, 5, summary.Processed)
	// 2+2+1, then the empty claim that signals drain
	require.Equal(t, 4, summary.Batches)
}

func TestRunBoundedStopsAtBudget(t *testing.T) {
	source := &sliceSource{items: make([]string, 100)}
	for i := range source.items {
		source.items[i] = "item"
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// each batch costs 20s of virtual time
	advance := func() { now = now.Add(20 * time.Second) }
	runner := NewRunner[string]("test", source, func(_ context.Context, _ string) error {
		return nil
	}, ident, nil, nil)

	summary, err := runner.runBounded(context.Background(), BoundedConfig{
		BatchSize:       10,
		InterBatchDelay: time.Millisecond,
		Budget:          50 * time.Second,
	}, func() time.Time { return now }, func(_ context.Context, _ time.Duration) error {
		advance()
		return nil
	})
	require.NoError(t, err)
	require.False(t, summary.Drained, "pool not exhausted when budget ran out")
	require.Equal(t, 3, summary.Batches)
	require.Equal(t, 30, summary.Claimed)
}

func TestRunBoundedUnclaimedRemainForNextInvocation(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c", "d"}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runner := NewRunner[string]("test", source, func(_ context.Context, _ string) error {
		return nil
	}, ident, nil, nil)

	summary, err := runner.runBounded(context.Background(), BoundedConfig{
		BatchSize:       2,
		InterBatchDelay: time.Millisecond,
		Budget:          30 * time.Second,
	}, func() time.Time { return now }, func(_ context.Context, _ time.Duration) error {
		now = now.Add(time.Minute) // delay blows the budget after the first batch
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Batches)
	require.Equal(t, 2, summary.Claimed)

	// the rest of the pool is intact for the next run
	rest, err := source.Claim(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, rest)
}

func TestRunBoundedRespectsContextDuringDelay(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b"}}
	runner := NewRunner[string]("test", source, func(_ context.Context, _ string) error {
		return nil
	}, ident, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runner.RunBounded(ctx, BoundedConfig{
		BatchSize:       1,
		InterBatchDelay: time.Hour,
		Budget:          time.Hour,
	})
	require.ErrorIs(t, err, context.Canceled)
}
