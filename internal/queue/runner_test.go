package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceSource hands each item out exactly once, like a SKIP LOCKED claim.
type sliceSource struct {
	mu    sync.Mutex
	items []string
	err   error
}

func (s *sliceSource) Claim(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if limit > len(s.items) {
		limit = len(s.items)
	}
	batch := s.items[:limit]
	s.items = s.items[limit:]
	return batch, nil
}

func ident(s string) string { return s }

func TestRunBatchIsolatesItemFailures(t *testing.T) {
	source := &sliceSource{items: []string{"a", "bad", "c"}}
	var processed []string
	runner := NewRunner[string]("test", source, func(_ context.Context, item string) error {
		if item == "bad" {
			return errors.New("boom")
		}
		processed = append(processed, item)
		return nil
	}, ident, nil, nil)

	res, err := runner.RunBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 3, res.Claimed)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, []string{"a", "c"}, processed, "failure must not abort the rest of the batch")
}

func TestRunBatchPropagatesClaimError(t *testing.T) {
	source := &sliceSource{err: errors.New("db down")}
	runner := NewRunner[string]("test", source, func(_ context.Context, _ string) error {
		return nil
	}, ident, nil, nil)

	_, err := runner.RunBatch(context.Background(), 5)
	require.Error(t, err)
}

func TestClaimedItemsAreExclusive(t *testing.T) {
	source := &sliceSource{items: []string{"a", "b", "c", "d", "e"}}
	var mu sync.Mutex
	seen := map[string]int{}
	runner := NewRunner[string]("test", source, func(_ context.Context, item string) error {
		mu.Lock()
		seen[item]++
		mu.Unlock()
		return nil
	}, ident, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = runner.RunBatch(context.Background(), 2)
		}()
	}
	wg.Wait()

	for item, count := range seen {
		require.Equal(t, 1, count, "item %s processed more than once", item)
	}
}
