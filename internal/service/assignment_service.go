package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/observability"
	"github.com/KP-1306/vaiyu-sub006/internal/queue"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
)

// AssignmentPolicy picks the staff member a claimed ticket should go to.
// Returning nil with no error means nobody is eligible right now; the ticket
// stays NEW and its claim lease returns it to the pool later.
type AssignmentPolicy interface {
	Pick(ctx context.Context, store repository.Datastore, ticket domain.Ticket) (*domain.StaffMember, error)
}

// LeastLoadedPolicy assigns to the active, available department member with
// the fewest open tickets.
type LeastLoadedPolicy struct{}

func (LeastLoadedPolicy) Pick(ctx context.Context, store repository.Datastore, ticket domain.Ticket) (*domain.StaffMember, error) {
	candidates, err := store.Staff().ListAvailableByDepartment(ctx, ticket.DepartmentID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0].Staff, nil
}

// AssignmentService drives the auto-assignment queue specialization: it is
// the Source that claims unassigned NEW tickets and the processor that runs
// the assign transition for each one as the SYSTEM actor.
type AssignmentService struct {
	store   repository.Datastore
	tickets *TicketService
	policy  AssignmentPolicy
	lease   time.Duration
	logger  *zap.Logger
}

// NewAssignmentService builds the service. A nil policy falls back to
// least-loaded.
func NewAssignmentService(store repository.Datastore, tickets *TicketService, policy AssignmentPolicy, lease time.Duration, logger *zap.Logger) *AssignmentService {
	if policy == nil {
		policy = LeastLoadedPolicy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		store:   store,
		tickets: tickets,
		policy:  policy,
		lease:   lease,
		logger:  logger,
	}
}

// Claim implements queue.Source over unassigned NEW tickets.
func (s *AssignmentService) Claim(ctx context.Context, limit int) ([]domain.Ticket, error) {
	return s.store.Tickets().ClaimUnassigned(ctx, limit, s.lease)
}

// Process assigns one claimed ticket. When no staff member is eligible the
// ticket is left untouched; the lease expiry makes it claimable again on a
// later run.
func (s *AssignmentService) Process(ctx context.Context, ticket domain.Ticket) error {
	candidate, err := s.policy.Pick(ctx, s.store, ticket)
	if err != nil {
		return err
	}
	if candidate == nil {
		s.logger.Info("no eligible staff, leaving ticket unassigned",
			zap.String("ticket_id", ticket.ID),
			zap.String("department_id", ticket.DepartmentID))
		return nil
	}

	_, err = s.tickets.Transition(ctx, ticket.ID, ActionAssign,
		Actor{Type: domain.ActorTypeSystem},
		TransitionParams{AssigneeID: candidate.ID})
	return err
}

// Runner wires the service into the generic claim runner.
func (s *AssignmentService) Runner(logger *zap.Logger, metrics *observability.Metrics) *queue.Runner[domain.Ticket] {
	return queue.NewRunner[domain.Ticket]("auto_assign", s, s.Process,
		func(t domain.Ticket) string { return t.ID }, logger, metrics)
}
