package repository

import (
	"context"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// AuditRepository appends write-only audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}

type auditRepository struct {
	db DB
}

func (r *auditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (action, actor_type, actor_id, hotel_id, entity_type, entity_id, metadata, client_ip, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return r.db.QueryRow(ctx, query,
		entry.Action,
		entry.ActorType,
		entry.ActorID,
		entry.HotelID,
		entry.EntityType,
		entry.EntityID,
		metadata,
		entry.ClientIP,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}
