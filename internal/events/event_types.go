package events

import (
	"time"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommented     EventType = "ticket_commented"
	EventBookingImported     EventType = "booking_imported"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type domain.ActorType `json:"type"`
	ID   *string          `json:"id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	HotelID   string    `json:"hotel_id"`
	EntityID  string    `json:"entity_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DisplayCode  string                `json:"display_code"`
	DepartmentID string                `json:"department_id"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeStaffID string `json:"assignee_staff_id"`
	DepartmentID    string `json:"department_id"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	EventID     string `json:"event_id"`
	BodyPreview string `json:"body_preview"`
	MediaCount  int    `json:"media_count"`
}

// BookingImportedPayload payload.
type BookingImportedPayload struct {
	ImportRowID string `json:"import_row_id"`
	StayID      string `json:"stay_id"`
	GuestEmail  string `json:"guest_email"`
}
