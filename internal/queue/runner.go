// Package queue implements the claim-based work distribution pattern shared
// by the auto-assignment job and the bounded booking-import worker. A Source
// atomically claims a bounded batch of eligible items out of a shared pool;
// the Runner executes each item with per-item failure isolation.
package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/observability"
)

// Source hands out claimed work items. Claim must select eligible items and
// mark them claimed in one atomic step, and must never return an item that a
// concurrent Claim call also returned.
type Source[T any] interface {
	Claim(ctx context.Context, limit int) ([]T, error)
}

// Runner drains claimed batches through a process function. One item failing
// is recorded and does not abort the rest of the batch.
type Runner[T any] struct {
	name    string
	source  Source[T]
	process func(ctx context.Context, item T) error
	key     func(item T) string
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRunner builds a runner for one queue specialization.
func NewRunner[T any](
	name string,
	source Source[T],
	process func(ctx context.Context, item T) error,
	key func(item T) string,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Runner[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner[T]{
		name:    name,
		source:  source,
		process: process,
		key:     key,
		logger:  logger,
		metrics: metrics,
	}
}

// BatchResult reports one claim-and-process round.
type BatchResult struct {
	Claimed   int
	Processed int
	Failed    int
}

// RunBatch claims one batch and processes every item in it. The returned
// error covers the claim step only; item failures are isolated, logged, and
// counted in the result.
func (r *Runner[T]) RunBatch(ctx context.Context, limit int) (BatchResult, error) {
	var res BatchResult

	items, err := r.source.Claim(ctx, limit)
	if err != nil {
		return res, err
	}
	res.Claimed = len(items)

	for _, item := range items {
		if err := r.process(ctx, item); err != nil {
			res.Failed++
			r.metrics.RecordQueueItem(r.name, "error")
			r.logger.Warn("work item failed",
				zap.String("queue", r.name),
				zap.String("item", r.key(item)),
				zap.Error(err))
			continue
		}
		res.Processed++
		r.metrics.RecordQueueItem(r.name, "ok")
	}
	return res, nil
}
