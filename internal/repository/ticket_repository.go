package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// TicketFilter captures staff search parameters.
type TicketFilter struct {
	HotelID      *string
	DepartmentID *string
	StayID       *string
	AssigneeID   *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetForUpdate locks the row for the enclosing transaction, serializing
	// concurrent transitions on the same ticket.
	GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	// ClaimUnassigned atomically selects up to limit NEW unassigned tickets,
	// stamps their claim lease, and returns them. Lock-skipping so concurrent
	// claimers never block each other or double-claim.
	ClaimUnassigned(ctx context.Context, limit int, lease time.Duration) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

const ticketColumns = `id, display_code, hotel_id, service_id, department_id, stay_id, room_id, zone_id,
               title, description, priority, status, creator_type, creator_id, assignee_staff_id,
               created_at, updated_at, completed_at, cancelled_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (display_code, hotel_id, service_id, department_id, stay_id, room_id, zone_id,
                             title, description, priority, status, creator_type, creator_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.DisplayCode,
		ticket.HotelID,
		ticket.ServiceID,
		ticket.DepartmentID,
		ticket.StayID,
		ticket.RoomID,
		ticket.ZoneID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.CreatorType,
		ticket.CreatorID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET description=$1, priority=$2, status=$3, assignee_staff_id=$4,
            completed_at=$5, cancelled_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.AssigneeID,
		ticket.CompletedAt,
		ticket.CancelledAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) ClaimUnassigned(ctx context.Context, limit int, lease time.Duration) ([]domain.Ticket, error) {
	// eligibility selection and claim-marking are one statement: the
	// subquery locks eligible rows with SKIP LOCKED, the update stamps the
	// lease before any other claimer can see them
	query := `
        UPDATE tickets SET claimed_at = NOW()
        WHERE id IN (
            SELECT id FROM tickets
            WHERE status = 'NEW' AND assignee_staff_id IS NULL
              AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
            ORDER BY created_at
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING ` + ticketColumns
	rows, err := r.db.Query(ctx, query, limit, lease.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.DisplayCode,
		&ticket.HotelID,
		&ticket.ServiceID,
		&ticket.DepartmentID,
		&ticket.StayID,
		&ticket.RoomID,
		&ticket.ZoneID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatorType,
		&ticket.CreatorID,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CompletedAt,
		&ticket.CancelledAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.HotelID != nil {
		args = append(args, *filter.HotelID)
		clauses = append(clauses, fmt.Sprintf("hotel_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.StayID != nil {
		args = append(args, *filter.StayID)
		clauses = append(clauses, fmt.Sprintf("stay_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_staff_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.DisplayCode,
			&ticket.HotelID,
			&ticket.ServiceID,
			&ticket.DepartmentID,
			&ticket.StayID,
			&ticket.RoomID,
			&ticket.ZoneID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.Status,
			&ticket.CreatorType,
			&ticket.CreatorID,
			&ticket.AssigneeID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.CompletedAt,
			&ticket.CancelledAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
