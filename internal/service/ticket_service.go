package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/audit"
	"github.com/KP-1306/vaiyu-sub006/internal/domain"
	"github.com/KP-1306/vaiyu-sub006/internal/events"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	apperrors "github.com/KP-1306/vaiyu-sub006/pkg/util"
)

// Actor identifies the caller of a ticket operation.
type Actor struct {
	Type      domain.ActorType
	ID        *string
	StayID    *string
	ClientIP  string
	UserAgent string
}

// CreateTicketInput describes ticket creation payload. Exactly one of RoomID
// and ZoneID must be set.
type CreateTicketInput struct {
	HotelID     string
	ServiceID   string
	RoomID      *string
	ZoneID      *string
	StayID      *string
	Description string
	Priority    domain.TicketPriority
}

// TransitionParams carries per-action arguments.
type TransitionParams struct {
	AssigneeID string
	Reason     string
}

// MediaInput defines comment attachment metadata.
type MediaInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// SLAView is the live-computed timer reading for one ticket.
type SLAView struct {
	PolicyID           string
	TargetMinutes      int
	Running            bool
	ElapsedActive      time.Duration
	Remaining          time.Duration
	TotalPausedSeconds int64
	Breached           bool
}

// TicketView bundles the aggregate with its derived values.
type TicketView struct {
	Ticket      domain.Ticket
	SLA         SLAView
	ReopenCount int
	Events      []domain.TicketEvent
}

// TicketService is the state machine for the ticket lifecycle. Every
// mutation runs as one store transaction: ticket row, SLA state, and event
// append commit or roll back together. Concurrent transitions on the same
// ticket are serialized by the row lock taken in GetForUpdate; the loser
// observes the committed state and is rejected by the transition table.
type TicketService struct {
	store       repository.Datastore
	dispatcher  events.Dispatcher
	auditor     *audit.Recorder
	logger      *zap.Logger
	mediaPrefix string
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the service.
type TicketDependencies struct {
	Store       repository.Datastore
	Dispatcher  events.Dispatcher
	Auditor     *audit.Recorder
	Logger      *zap.Logger
	MediaPrefix string
	Now         func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		auditor:     deps.Auditor,
		logger:      logger,
		mediaPrefix: deps.MediaPrefix,
		now:         now,
	}
}

// Create validates and inserts a new ticket together with its CREATED event
// and its SLA state, in one atomic unit. The ticket title is snapshotted
// from the service catalog; the SLA target from the department's active
// policy. A ticket is never created without a timing contract.
func (s *TicketService) Create(ctx context.Context, actor Actor, input CreateTicketInput) (*domain.Ticket, error) {
	if (input.RoomID != nil) == (input.ZoneID != nil) {
		return nil, apperrors.NewValidationError("exactly one of room_id or zone_id must be set", nil)
	}
	if !domain.ValidActorType(actor.Type) {
		return nil, apperrors.NewValidationError("invalid creator type", map[string]any{"creator_type": actor.Type})
	}

	svc, err := s.store.Catalog().GetService(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": input.ServiceID})
		}
		return nil, apperrors.MapError(err)
	}
	if !svc.IsActive || svc.HotelID != input.HotelID {
		return nil, apperrors.NewNotFound("service", map[string]any{"service_id": input.ServiceID})
	}
	dept, err := s.store.Catalog().GetDepartment(ctx, svc.DepartmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !dept.IsActive {
		return nil, apperrors.NewConflict("department inactive", map[string]any{"department_id": dept.ID})
	}

	policy, err := s.store.SLA().GetActivePolicy(ctx, dept.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("active SLA policy", map[string]any{"department_id": dept.ID})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.checkLocation(ctx, input); err != nil {
		return nil, err
	}
	if input.StayID != nil {
		stay, err := s.store.Stays().GetByID(ctx, *input.StayID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("stay", map[string]any{"stay_id": *input.StayID})
			}
			return nil, apperrors.MapError(err)
		}
		if stay.HotelID != input.HotelID {
			return nil, apperrors.NewValidationError("stay belongs to another hotel", nil)
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = svc.DefaultPriority
	}
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	var creatorID *string
	if actor.Type == domain.ActorTypeStaff || actor.Type == domain.ActorTypeFrontDesk {
		creatorID = actor.ID
	}

	ticket := &domain.Ticket{
		DisplayCode:  generateDisplayCode(),
		HotelID:      input.HotelID,
		ServiceID:    svc.ID,
		DepartmentID: dept.ID,
		StayID:       input.StayID,
		RoomID:       input.RoomID,
		ZoneID:       input.ZoneID,
		Title:        svc.Name,
		Description:  strings.TrimSpace(input.Description),
		Priority:     priority,
		Status:       domain.TicketStatusNew,
		CreatorType:  actor.Type,
		CreatorID:    creatorID,
	}

	err = s.store.WithTx(ctx, func(ds repository.Datastore) error {
		if err := ds.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		created := domain.TicketStatusNew
		event := &domain.TicketEvent{
			TicketID:  ticket.ID,
			Type:      domain.EventTypeCreated,
			ActorType: actor.Type,
			ActorID:   creatorID,
			NewStatus: &created,
			Comment:   ticket.Description,
		}
		if err := ds.Events().Append(ctx, event); err != nil {
			return err
		}
		state := &domain.SLAState{
			TicketID:      ticket.ID,
			PolicyID:      policy.ID,
			TargetMinutes: policy.TargetMinutes,
		}
		return ds.SLA().CreateState(ctx, state)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit(ctx, actor, "ticket.create", ticket.HotelID, ticket.ID, map[string]any{
		"display_code": ticket.DisplayCode,
		"service_id":   ticket.ServiceID,
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		HotelID:  ticket.HotelID,
		EntityID: ticket.ID,
		Actor:    events.Actor{Type: actor.Type, ID: actor.ID},
		Payload: events.TicketCreatedPayload{
			DisplayCode:  ticket.DisplayCode,
			DepartmentID: ticket.DepartmentID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

func (s *TicketService) checkLocation(ctx context.Context, input CreateTicketInput) error {
	if input.RoomID != nil {
		room, err := s.store.Catalog().GetRoom(ctx, *input.RoomID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("room", map[string]any{"room_id": *input.RoomID})
			}
			return apperrors.MapError(err)
		}
		if room.HotelID != input.HotelID {
			return apperrors.NewValidationError("room belongs to another hotel", nil)
		}
		return nil
	}
	zone, err := s.store.Catalog().GetZone(ctx, *input.ZoneID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("zone", map[string]any{"zone_id": *input.ZoneID})
		}
		return apperrors.MapError(err)
	}
	if zone.HotelID != input.HotelID {
		return apperrors.NewValidationError("zone belongs to another hotel", nil)
	}
	return nil
}

// Transition applies one state-machine action. The row lock on the ticket
// serializes concurrent attempts; the transition table rejects anything not
// legal from the committed state.
func (s *TicketService) Transition(ctx context.Context, ticketID string, action Action, actor Actor, params TransitionParams) (*TicketView, error) {
	if !ValidAction(action) {
		return nil, apperrors.NewValidationError("unknown action", map[string]any{"action": action})
	}

	var (
		published []events.Event
		hotelID   string
	)
	err := s.store.WithTx(ctx, func(ds repository.Datastore) error {
		ticket, err := ds.Tickets().GetForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		hotelID = ticket.HotelID

		next, ok := nextStatus(ticket.Status, action)
		if !ok {
			return apperrors.NewInvalidTransition(string(action), string(ticket.Status))
		}

		state, err := ds.SLA().GetStateForUpdate(ctx, ticket.ID)
		if err != nil {
			return err
		}

		now := s.now()
		oldStatus := ticket.Status
		event := &domain.TicketEvent{
			TicketID:  ticket.ID,
			Type:      domain.EventTypeStatusChange,
			ActorType: actor.Type,
			ActorID:   actor.ID,
			OldStatus: &oldStatus,
			NewStatus: &next,
		}

		switch action {
		case ActionAssign:
			if err := s.applyAssign(ctx, ds, ticket, params.AssigneeID); err != nil {
				return err
			}
			event.Type = domain.EventTypeAssigned
			event.Comment = params.AssigneeID
			published = append(published, events.Event{
				Type:     events.EventTicketAssigned,
				HotelID:  ticket.HotelID,
				EntityID: ticket.ID,
				Actor:    events.Actor{Type: actor.Type, ID: actor.ID},
				Payload: events.TicketAssignedPayload{
					AssigneeStaffID: params.AssigneeID,
					DepartmentID:    ticket.DepartmentID,
				},
			})

		case ActionStart:
			if state.StartedAt == nil {
				state.StartedAt = &now
			}

		case ActionPause:
			state.PausedAt = &now

		case ActionResume:
			if state.PausedAt != nil {
				state.TotalPausedSeconds += int64(now.Sub(*state.PausedAt).Seconds())
				state.PausedAt = nil
			}

		case ActionResolve, ActionClose:
			// breach evaluated once against actual elapsed time and frozen;
			// later policy edits never alter it
			state.Breached = state.BreachedAt(now)
			ticket.CompletedAt = &now

		case ActionCancel:
			state.Breached = state.BreachedAt(now)
			ticket.CancelledAt = &now
			event.Comment = params.Reason

		case ActionReopen:
			if err := s.applyReopen(ctx, ds, ticket, state, actor, event); err != nil {
				return err
			}
		}

		ticket.Status = next
		if err := ds.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		if err := ds.SLA().UpdateState(ctx, state); err != nil {
			return err
		}
		if err := ds.Events().Append(ctx, event); err != nil {
			return err
		}

		if action != ActionAssign {
			published = append(published, events.Event{
				Type:     events.EventTicketStatusChanged,
				HotelID:  ticket.HotelID,
				EntityID: ticket.ID,
				Actor:    events.Actor{Type: actor.Type, ID: actor.ID},
				Payload: events.TicketStatusChangedPayload{
					OldStatus: oldStatus,
					NewStatus: next,
					Comment:   event.Comment,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit(ctx, actor, "ticket."+string(action), hotelID, ticketID, map[string]any{
		"reason": params.Reason,
	})
	for _, e := range published {
		s.publish(ctx, e)
	}
	return s.GetTicketView(ctx, ticketID)
}

func (s *TicketService) applyAssign(ctx context.Context, ds repository.Datastore, ticket *domain.Ticket, assigneeID string) error {
	if assigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	staff, err := ds.Staff().GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("staff", map[string]any{"staff_id": assigneeID})
		}
		return err
	}
	if !staff.Active {
		return apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": assigneeID})
	}
	if staff.HotelID != ticket.HotelID {
		return apperrors.NewValidationError("assignee belongs to another hotel", nil)
	}
	if staff.DepartmentID != nil && *staff.DepartmentID != ticket.DepartmentID {
		return apperrors.NewConflict("assignee outside ticket department", map[string]any{"staff_id": assigneeID})
	}
	ticket.AssigneeID = &staff.ID
	return nil
}

func (s *TicketService) applyReopen(ctx context.Context, ds repository.Datastore, ticket *domain.Ticket, state *domain.SLAState, actor Actor, event *domain.TicketEvent) error {
	if actor.Type == domain.ActorTypeGuest {
		if ticket.StayID == nil || actor.StayID == nil || *actor.StayID != *ticket.StayID {
			return apperrors.NewForbidden("caller is not authorized for the stay owning this ticket")
		}
	}

	// reopen count derived from the log, never from a client counter
	prior, err := ds.Events().CountReopens(ctx, ticket.ID)
	if err != nil {
		return err
	}
	event.Comment = domain.ReopenComment + " #" + strconv.Itoa(prior+1)

	// re-bind to the department's currently active policy; the timer
	// restarts from a clean slate
	policy, err := ds.SLA().GetActivePolicy(ctx, ticket.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("active SLA policy", map[string]any{"department_id": ticket.DepartmentID})
		}
		return err
	}
	state.PolicyID = policy.ID
	state.TargetMinutes = policy.TargetMinutes
	state.StartedAt = nil
	state.PausedAt = nil
	state.TotalPausedSeconds = 0
	state.Breached = false

	ticket.AssigneeID = nil
	ticket.CompletedAt = nil
	return nil
}

// AppendComment adds a COMMENT_ADDED event with optional media. Media
// storage keys must live under the configured prefix.
func (s *TicketService) AppendComment(ctx context.Context, ticketID string, actor Actor, text string, media []MediaInput) (*domain.TicketEvent, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(media) == 0 {
		return nil, apperrors.NewValidationError("comment text or media required", nil)
	}
	refs := make([]domain.MediaReference, 0, len(media))
	for _, m := range media {
		if !strings.HasPrefix(m.StorageKey, s.mediaPrefix) || strings.Contains(m.StorageKey, "..") {
			return nil, apperrors.NewValidationError("invalid media reference", map[string]any{"storage_key": m.StorageKey})
		}
		refs = append(refs, domain.MediaReference{
			StorageKey: m.StorageKey,
			FileName:   m.FileName,
			MimeType:   m.MimeType,
			SizeBytes:  m.SizeBytes,
		})
	}

	var (
		event   *domain.TicketEvent
		hotelID string
	)
	err := s.store.WithTx(ctx, func(ds repository.Datastore) error {
		ticket, err := ds.Tickets().GetForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if ticket.Terminal() {
			return apperrors.NewConflict("ticket is cancelled", map[string]any{"ticket_id": ticketID})
		}
		hotelID = ticket.HotelID
		event = &domain.TicketEvent{
			TicketID:  ticket.ID,
			Type:      domain.EventTypeCommentAdded,
			ActorType: actor.Type,
			ActorID:   actor.ID,
			Comment:   text,
			Media:     refs,
		}
		return ds.Events().Append(ctx, event)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit(ctx, actor, "ticket.comment", hotelID, ticketID, map[string]any{
		"media_count": len(refs),
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommented,
		HotelID:  hotelID,
		EntityID: ticketID,
		Actor:    events.Actor{Type: actor.Type, ID: actor.ID},
		Payload: events.TicketCommentedPayload{
			EventID:     event.ID,
			BodyPreview: stringPreview(text, 120),
			MediaCount:  len(refs),
		},
	})
	return event, nil
}

// GetTicketView returns the ticket with SLA numbers recomputed live from the
// stored timer inputs. Completed tickets report the frozen breach flag and
// the elapsed time as of completion.
func (s *TicketService) GetTicketView(ctx context.Context, ticketID string) (*TicketView, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	state, err := s.store.SLA().GetState(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	log, err := s.store.Events().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	reopens, err := s.store.Events().CountReopens(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	evalAt := s.now()
	breached := state.BreachedAt(evalAt)
	switch {
	case ticket.CompletedAt != nil:
		evalAt = *ticket.CompletedAt
		breached = state.Breached
	case ticket.CancelledAt != nil:
		evalAt = *ticket.CancelledAt
		breached = state.Breached
	}

	return &TicketView{
		Ticket: *ticket,
		SLA: SLAView{
			PolicyID:           state.PolicyID,
			TargetMinutes:      state.TargetMinutes,
			Running:            state.Running() && ticket.CompletedAt == nil && ticket.CancelledAt == nil,
			ElapsedActive:      state.ElapsedActive(evalAt),
			Remaining:          state.Remaining(evalAt),
			TotalPausedSeconds: state.TotalPausedSeconds,
			Breached:           breached,
		},
		ReopenCount: reopens,
		Events:      log,
	}, nil
}

// ListTickets returns tickets matching the staff filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.store.Tickets().ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) audit(ctx context.Context, actor Actor, action, hotelID, entityID string, metadata map[string]any) {
	if s.auditor == nil {
		return
	}
	hotel := hotelID
	s.auditor.Record(ctx, domain.AuditEntry{
		Action:     action,
		ActorType:  actor.Type,
		ActorID:    actor.ID,
		HotelID:    &hotel,
		EntityType: "ticket",
		EntityID:   entityID,
		Metadata:   metadata,
		ClientIP:   actor.ClientIP,
		UserAgent:  actor.UserAgent,
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateDisplayCode() string {
	return "REQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
