package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// StaffWithLoad pairs a staff member with their count of open tickets, used
// by the least-loaded assignment policy.
type StaffWithLoad struct {
	Staff       domain.StaffMember
	OpenTickets int
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	HotelID      *string
	DepartmentID *string
	Role         *domain.StaffRole
	Active       *bool
	Limit        int
	Offset       int
}

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
	// ListAvailableByDepartment returns active, available staff of the
	// department ordered by open-ticket load ascending.
	ListAvailableByDepartment(ctx context.Context, departmentID string) ([]StaffWithLoad, error)
}

type staffRepository struct {
	db DB
}

const staffColumns = `id, hotel_id, department_id, name, email, password_hash, role, available_flag, active_flag, created_at, updated_at`

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (hotel_id, department_id, name, email, password_hash, role, available_flag, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		staff.HotelID,
		staff.DepartmentID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Available,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE staff_members
        SET department_id=$1, name=$2, email=$3, password_hash=$4, role=$5, available_flag=$6, active_flag=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		staff.DepartmentID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Available,
		staff.Active,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id=$1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE email=$1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *staffRepository) scanOne(row pgx.Row) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := row.Scan(
		&staff.ID,
		&staff.HotelID,
		&staff.DepartmentID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Available,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	args := []any{}
	clauses := []string{}

	if filter.HotelID != nil {
		args = append(args, *filter.HotelID)
		clauses = append(clauses, fmt.Sprintf("hotel_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(
			&staff.ID,
			&staff.HotelID,
			&staff.DepartmentID,
			&staff.Name,
			&staff.Email,
			&staff.PasswordHash,
			&staff.Role,
			&staff.Available,
			&staff.Active,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) ListAvailableByDepartment(ctx context.Context, departmentID string) ([]StaffWithLoad, error) {
	const query = `
        SELECT s.id, s.hotel_id, s.department_id, s.name, s.email, s.password_hash, s.role,
               s.available_flag, s.active_flag, s.created_at, s.updated_at,
               COUNT(t.id) FILTER (WHERE t.status IN ('NEW','IN_PROGRESS','BLOCKED')) AS open_tickets
        FROM staff_members s
        LEFT JOIN tickets t ON t.assignee_staff_id = s.id
        WHERE s.department_id = $1 AND s.active_flag AND s.available_flag
        GROUP BY s.id
        ORDER BY open_tickets ASC, s.created_at ASC`
	rows, err := r.db.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StaffWithLoad
	for rows.Next() {
		var item StaffWithLoad
		if err := rows.Scan(
			&item.Staff.ID,
			&item.Staff.HotelID,
			&item.Staff.DepartmentID,
			&item.Staff.Name,
			&item.Staff.Email,
			&item.Staff.PasswordHash,
			&item.Staff.Role,
			&item.Staff.Available,
			&item.Staff.Active,
			&item.Staff.CreatedAt,
			&item.Staff.UpdatedAt,
			&item.OpenTickets,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
