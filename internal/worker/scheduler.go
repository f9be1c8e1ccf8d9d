// Package worker runs the claim-based queue specializations on a schedule:
// the auto-assignment sweep and the bounded booking-import drain.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/config"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/queue"
)

// Scheduler owns the cron loop and the two queue runners.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.QueueConfig
	assign    *queue.Runner[domain.Ticket]
	importing *queue.Runner[domain.ImportRow]
	logger    *zap.Logger
}

// NewScheduler builds the scheduler; Start arms it.
func NewScheduler(cfg config.QueueConfig, assign *queue.Runner[domain.Ticket], importing *queue.Runner[domain.ImportRow], logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(),
		cfg:       cfg,
		assign:    assign,
		importing: importing,
		logger:    logger,
	}
}

// Start registers both jobs and launches the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(every(s.cfg.AssignInterval()), func() {
		s.runAssign(ctx)
	}); err != nil {
		return fmt.Errorf("schedule auto_assign: %w", err)
	}
	if _, err := s.cron.AddFunc(every(s.cfg.ImportInterval()), func() {
		s.runImport(ctx)
	}); err != nil {
		return fmt.Errorf("schedule booking_import: %w", err)
	}
	s.cron.Start()
	s.logger.Info("queue scheduler started",
		zap.Duration("assign_interval", s.cfg.AssignInterval()),
		zap.Duration("import_interval", s.cfg.ImportInterval()))
	return nil
}

// Stop halts the loop and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("queue scheduler stopped")
}

// runAssign drains one batch per tick. The sweep is small and frequent, so
// one batch suffices; anything left is picked up next tick.
func (s *Scheduler) runAssign(ctx context.Context) {
	res, err := s.assign.RunBatch(ctx, s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("auto-assign claim failed", zap.Error(err))
		return
	}
	if res.Claimed > 0 {
		s.logger.Info("auto-assign sweep",
			zap.Int("claimed", res.Claimed),
			zap.Int("processed", res.Processed),
			zap.Int("failed", res.Failed))
	}
}

// runImport drains the pending pool under the invocation budget. If the
// budget expires mid-pool the remaining rows keep their PENDING status and
// the next tick resumes from the store.
func (s *Scheduler) runImport(ctx context.Context) {
	summary, err := s.importing.RunBounded(ctx, queue.BoundedConfig{
		BatchSize:       s.cfg.BatchSize,
		InterBatchDelay: s.cfg.InterBatchDelay(),
		Budget:          s.cfg.Budget(),
	})
	if err != nil {
		s.logger.Error("import run failed", zap.Error(err))
		return
	}
	if summary.Claimed > 0 || !summary.Drained {
		s.logger.Info("import run",
			zap.Int("batches", summary.Batches),
			zap.Int("claimed", summary.Claimed),
			zap.Int("processed", summary.Processed),
			zap.Int("failed", summary.Failed),
			zap.Bool("drained", summary.Drained))
	}
}

func every(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	return "@every " + d.String()
}
