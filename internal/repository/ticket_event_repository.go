package repository

import (
	"context"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// TicketEventRepository stores the append-only event log. Entries are never
// updated or deleted.
type TicketEventRepository interface {
	Append(ctx context.Context, event *domain.TicketEvent) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error)
	// CountReopens derives the reopen count by scanning the log for
	// COMPLETED -> NEW transitions. Never stored as a mutable counter.
	CountReopens(ctx context.Context, ticketID string) (int, error)
}

type ticketEventRepository struct {
	db DB
}

func (r *ticketEventRepository) Append(ctx context.Context, event *domain.TicketEvent) error {
	const query = `
        INSERT INTO ticket_events (ticket_id, event_type, actor_type, actor_id, old_status, new_status, comment)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, query,
		event.TicketID,
		event.Type,
		event.ActorType,
		event.ActorID,
		event.OldStatus,
		event.NewStatus,
		event.Comment,
	).Scan(&event.ID, &event.CreatedAt); err != nil {
		return err
	}

	const mediaQuery = `
        INSERT INTO ticket_event_media (ticket_event_id, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	for i := range event.Media {
		media := &event.Media[i]
		media.TicketEventID = event.ID
		if err := r.db.QueryRow(ctx, mediaQuery,
			media.TicketEventID,
			media.StorageKey,
			media.FileName,
			media.MimeType,
			media.SizeBytes,
		).Scan(&media.ID, &media.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketEventRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketEvent, error) {
	const query = `
        SELECT id, ticket_id, event_type, actor_type, actor_id, old_status, new_status, comment, created_at
        FROM ticket_events WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketEvent
	for rows.Next() {
		var event domain.TicketEvent
		if err := rows.Scan(
			&event.ID,
			&event.TicketID,
			&event.Type,
			&event.ActorType,
			&event.ActorID,
			&event.OldStatus,
			&event.NewStatus,
			&event.Comment,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return result, nil
	}
	if err := r.attachMedia(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ticketEventRepository) attachMedia(ctx context.Context, events []domain.TicketEvent) error {
	const query = `
        SELECT m.id, m.ticket_event_id, m.storage_key, m.file_name, m.mime_type, m.size_bytes, m.created_at
        FROM ticket_event_media m
        JOIN ticket_events e ON e.id = m.ticket_event_id
        WHERE e.ticket_id = $1`
	if len(events) == 0 {
		return nil
	}
	rows, err := r.db.Query(ctx, query, events[0].TicketID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byEvent := make(map[string][]domain.MediaReference)
	for rows.Next() {
		var media domain.MediaReference
		if err := rows.Scan(
			&media.ID,
			&media.TicketEventID,
			&media.StorageKey,
			&media.FileName,
			&media.MimeType,
			&media.SizeBytes,
			&media.CreatedAt,
		); err != nil {
			return err
		}
		byEvent[media.TicketEventID] = append(byEvent[media.TicketEventID], media)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range events {
		events[i].Media = byEvent[events[i].ID]
	}
	return nil
}

func (r *ticketEventRepository) CountReopens(ctx context.Context, ticketID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM ticket_events
        WHERE ticket_id=$1 AND event_type=$2 AND old_status=$3 AND new_status=$4`
	var count int
	err := r.db.QueryRow(ctx, query, ticketID,
		domain.EventTypeStatusChange, domain.TicketStatusCompleted, domain.TicketStatusNew,
	).Scan(&count)
	return count, err
}
