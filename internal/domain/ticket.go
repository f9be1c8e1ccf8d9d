package domain

import "time"

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusBlocked    TicketStatus = "BLOCKED"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ActorType identifies who initiated an action on a ticket.
type ActorType string

const (
	ActorTypeGuest     ActorType = "GUEST"
	ActorTypeStaff     ActorType = "STAFF"
	ActorTypeFrontDesk ActorType = "FRONT_DESK"
	ActorTypeSystem    ActorType = "SYSTEM"
)

// ValidActorType reports whether v is a member of the actor enum.
func ValidActorType(v ActorType) bool {
	switch v {
	case ActorTypeGuest, ActorTypeStaff, ActorTypeFrontDesk, ActorTypeSystem:
		return true
	}
	return false
}

// Ticket is the aggregate for guest service and food requests. A ticket
// belongs to exactly one hotel for its whole life and is located at exactly
// one of room or zone.
type Ticket struct {
	ID           string
	DisplayCode  string
	HotelID      string
	ServiceID    string
	DepartmentID string
	StayID       *string
	RoomID       *string
	ZoneID       *string
	Title        string
	Description  string
	Priority     TicketPriority
	Status       TicketStatus
	CreatorType  ActorType
	CreatorID    *string
	AssigneeID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// LocationValid reports whether exactly one of room or zone is set.
func (t *Ticket) LocationValid() bool {
	return (t.RoomID != nil) != (t.ZoneID != nil)
}

// Terminal reports whether the ticket accepts no further work. COMPLETED is
// excluded because it is re-enterable via reopen.
func (t *Ticket) Terminal() bool {
	return t.Status == TicketStatusCancelled
}
