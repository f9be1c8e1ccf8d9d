// Package audit records forensic entries for every mutating operation.
// Recording is best-effort by contract: a failed write is logged and
// swallowed, never surfaced to the caller.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
)

// Recorder wraps the audit repository with the swallow-and-log contract.
type Recorder struct {
	store  repository.Datastore
	logger *zap.Logger
}

// NewRecorder builds a Recorder.
func NewRecorder(store repository.Datastore, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record writes the entry. Always returns; the signature has no error on
// purpose.
func (r *Recorder) Record(ctx context.Context, entry domain.AuditEntry) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Audit().Insert(ctx, &entry); err != nil {
		r.logger.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err))
	}
}
