package repository

import (
	"context"
	"time"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// ImportRepository handles the bulk booking import pool processed by the
// bounded batch worker.
type ImportRepository interface {
	InsertRows(ctx context.Context, rows []domain.ImportRow) error
	// ClaimPending atomically selects up to limit pending rows, stamps their
	// claim lease, and returns them. Lock-skipping, same contract as ticket
	// claims.
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]domain.ImportRow, error)
	MarkNotified(ctx context.Context, id string) error
	MarkError(ctx context.Context, id, reason string) error
	// MarkGroupError marks every row of the group, claimed or not. Used when
	// a group-level validation fails (e.g. no primary guest).
	MarkGroupError(ctx context.Context, groupID, reason string) error
	CountPrimaryInGroup(ctx context.Context, groupID string) (int, error)
}

type importRepository struct {
	db DB
}

const importColumns = `id, hotel_id, group_id, guest_name, guest_email, room_number, check_in, check_out,
               is_primary, status, error_reason, claimed_at, processed_at, created_at`

func (r *importRepository) InsertRows(ctx context.Context, rows []domain.ImportRow) error {
	const query = `
        INSERT INTO booking_import_rows (hotel_id, group_id, guest_name, guest_email, room_number, check_in, check_out, is_primary)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, status, created_at`
	for i := range rows {
		row := &rows[i]
		if err := r.db.QueryRow(ctx, query,
			row.HotelID,
			row.GroupID,
			row.GuestName,
			row.GuestEmail,
			row.RoomNumber,
			row.CheckIn,
			row.CheckOut,
			row.IsPrimary,
		).Scan(&row.ID, &row.Status, &row.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *importRepository) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]domain.ImportRow, error) {
	query := `
        UPDATE booking_import_rows SET claimed_at = NOW()
        WHERE id IN (
            SELECT id FROM booking_import_rows
            WHERE status = 'PENDING'
              AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
            ORDER BY created_at
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING ` + importColumns
	rows, err := r.db.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ImportRow
	for rows.Next() {
		var row domain.ImportRow
		if err := rows.Scan(
			&row.ID,
			&row.HotelID,
			&row.GroupID,
			&row.GuestName,
			&row.GuestEmail,
			&row.RoomNumber,
			&row.CheckIn,
			&row.CheckOut,
			&row.IsPrimary,
			&row.Status,
			&row.ErrorReason,
			&row.ClaimedAt,
			&row.ProcessedAt,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *importRepository) MarkNotified(ctx context.Context, id string) error {
	const query = `
        UPDATE booking_import_rows
        SET status='NOTIFIED', error_reason=NULL, processed_at=NOW()
        WHERE id=$1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *importRepository) MarkError(ctx context.Context, id, reason string) error {
	const query = `
        UPDATE booking_import_rows
        SET status='ERROR', error_reason=$2, processed_at=NOW()
        WHERE id=$1`
	_, err := r.db.Exec(ctx, query, id, reason)
	return err
}

func (r *importRepository) MarkGroupError(ctx context.Context, groupID, reason string) error {
	const query = `
        UPDATE booking_import_rows
        SET status='ERROR', error_reason=$2, processed_at=NOW()
        WHERE group_id=$1 AND status='PENDING'`
	_, err := r.db.Exec(ctx, query, groupID, reason)
	return err
}

func (r *importRepository) CountPrimaryInGroup(ctx context.Context, groupID string) (int, error) {
	const query = `SELECT COUNT(*) FROM booking_import_rows WHERE group_id=$1 AND is_primary`
	var count int
	err := r.db.QueryRow(ctx, query, groupID).Scan(&count)
	return count, err
}
