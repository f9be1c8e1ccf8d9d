package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/KP-1306/vaiyu-sub006/internal/config"
	"github.com/KP-1306/vaiyu-sub006/internal/events"
)

// NotificationService listens for domain events and fans them out to the
// configured channels. Delivery is a stub: payloads are logged where a real
// deployment would call the mail provider or webhook. Failures never
// propagate back to the operation that raised the event.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{cfg: cfg, logger: logger}
}

// Register subscribes the service to the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onTicketStatusChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	dispatcher.Subscribe(events.EventBookingImported, s.onBookingImported)
}

func (s *NotificationService) onTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket created",
		zap.String("ticket_id", event.EntityID),
		zap.String("display_code", payload.DisplayCode),
		zap.String("department_id", payload.DepartmentID))
	return nil
}

func (s *NotificationService) onTicketStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket status changed",
		zap.String("ticket_id", event.EntityID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

func (s *NotificationService) onTicketAssigned(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: ticket assigned",
		zap.String("ticket_id", event.EntityID),
		zap.String("assignee_staff_id", payload.AssigneeStaffID))
	return nil
}

// onBookingImported is where the welcome email with the stay link would be
// sent. The import worker marks the row NOTIFIED regardless: delivery is
// best-effort and never rolls back the stay.
func (s *NotificationService) onBookingImported(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BookingImportedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("notify: booking imported",
		zap.String("stay_id", payload.StayID),
		zap.String("guest_email", payload.GuestEmail),
		zap.String("from", s.cfg.EmailFrom))
	return nil
}
