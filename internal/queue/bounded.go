package queue

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BoundedConfig tunes one bounded invocation. Budget must sit safely below
// the hosting platform's hard invocation limit.
type BoundedConfig struct {
	BatchSize       int
	InterBatchDelay time.Duration
	Budget          time.Duration
}

// Summary reports one bounded invocation. Drained means the pool returned a
// zero-item claim; otherwise the budget expired and a later invocation
// resumes from the checkpointed per-item statuses in the store.
type Summary struct {
	Batches   int
	Claimed   int
	Processed int
	Failed    int
	Drained   bool
}

// RunBounded re-claims and processes batches until the pool drains or the
// wall-clock budget is exhausted. The budget check is cooperative: it runs
// between batches, never mid-item.
func (r *Runner[T]) RunBounded(ctx context.Context, cfg BoundedConfig) (Summary, error) {
	return r.runBounded(ctx, cfg, time.Now, sleepCtx)
}

func (r *Runner[T]) runBounded(
	ctx context.Context,
	cfg BoundedConfig,
	now func() time.Time,
	sleep func(ctx context.Context, d time.Duration) error,
) (Summary, error) {
	var summary Summary
	deadline := now().Add(cfg.Budget)

	for {
		if !now().Before(deadline) {
			r.logger.Info("budget exhausted",
				zap.String("queue", r.name),
				zap.Int("batches", summary.Batches))
			return summary, nil
		}

		res, err := r.RunBatch(ctx, cfg.BatchSize)
		if err != nil {
			return summary, err
		}
		summary.Batches++
		summary.Claimed += res.Claimed
		summary.Processed += res.Processed
		summary.Failed += res.Failed

		if res.Claimed == 0 {
			summary.Drained = true
			return summary, nil
		}

		if cfg.InterBatchDelay > 0 {
			if err := sleep(ctx, cfg.InterBatchDelay); err != nil {
				return summary, err
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
