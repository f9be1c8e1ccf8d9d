package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// SLARepository handles SLA policies and per-ticket timer state.
type SLARepository interface {
	GetActivePolicy(ctx context.Context, departmentID string) (*domain.SLAPolicy, error)
	GetPolicy(ctx context.Context, id string) (*domain.SLAPolicy, error)
	CreatePolicy(ctx context.Context, policy *domain.SLAPolicy) error
	CreateState(ctx context.Context, state *domain.SLAState) error
	GetState(ctx context.Context, ticketID string) (*domain.SLAState, error)
	GetStateForUpdate(ctx context.Context, ticketID string) (*domain.SLAState, error)
	UpdateState(ctx context.Context, state *domain.SLAState) error
}

type slaRepository struct {
	db DB
}

const policyColumns = `id, department_id, target_minutes, is_active, created_at`

func (r *slaRepository) GetActivePolicy(ctx context.Context, departmentID string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE department_id=$1 AND is_active`
	return r.scanPolicy(r.db.QueryRow(ctx, query, departmentID))
}

func (r *slaRepository) GetPolicy(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM sla_policies WHERE id=$1`
	return r.scanPolicy(r.db.QueryRow(ctx, query, id))
}

func (r *slaRepository) CreatePolicy(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (department_id, target_minutes, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		policy.DepartmentID,
		policy.TargetMinutes,
		policy.IsActive,
	).Scan(&policy.ID, &policy.CreatedAt)
}

func (r *slaRepository) scanPolicy(row pgx.Row) (*domain.SLAPolicy, error) {
	var policy domain.SLAPolicy
	if err := row.Scan(
		&policy.ID,
		&policy.DepartmentID,
		&policy.TargetMinutes,
		&policy.IsActive,
		&policy.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

const stateColumns = `ticket_id, policy_id, target_minutes, started_at, paused_at, total_paused_seconds, breached, updated_at`

func (r *slaRepository) CreateState(ctx context.Context, state *domain.SLAState) error {
	const query = `
        INSERT INTO sla_states (ticket_id, policy_id, target_minutes, started_at, paused_at, total_paused_seconds, breached)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		state.TicketID,
		state.PolicyID,
		state.TargetMinutes,
		state.StartedAt,
		state.PausedAt,
		state.TotalPausedSeconds,
		state.Breached,
	).Scan(&state.UpdatedAt)
}

func (r *slaRepository) GetState(ctx context.Context, ticketID string) (*domain.SLAState, error) {
	query := `SELECT ` + stateColumns + ` FROM sla_states WHERE ticket_id=$1`
	return r.scanState(r.db.QueryRow(ctx, query, ticketID))
}

func (r *slaRepository) GetStateForUpdate(ctx context.Context, ticketID string) (*domain.SLAState, error) {
	query := `SELECT ` + stateColumns + ` FROM sla_states WHERE ticket_id=$1 FOR UPDATE`
	return r.scanState(r.db.QueryRow(ctx, query, ticketID))
}

func (r *slaRepository) UpdateState(ctx context.Context, state *domain.SLAState) error {
	const query = `
        UPDATE sla_states
        SET policy_id=$1, target_minutes=$2, started_at=$3, paused_at=$4, total_paused_seconds=$5, breached=$6, updated_at=NOW()
        WHERE ticket_id=$7`
	cmd, err := r.db.Exec(ctx, query,
		state.PolicyID,
		state.TargetMinutes,
		state.StartedAt,
		state.PausedAt,
		state.TotalPausedSeconds,
		state.Breached,
		state.TicketID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRepository) scanState(row pgx.Row) (*domain.SLAState, error) {
	var state domain.SLAState
	if err := row.Scan(
		&state.TicketID,
		&state.PolicyID,
		&state.TargetMinutes,
		&state.StartedAt,
		&state.PausedAt,
		&state.TotalPausedSeconds,
		&state.Breached,
		&state.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &state, nil
}
