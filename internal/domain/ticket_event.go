package domain

import "time"

// TicketEventType captures what happened in an event log entry.
type TicketEventType string

const (
	EventTypeCreated      TicketEventType = "CREATED"
	EventTypeStatusChange TicketEventType = "STATUS_CHANGED"
	EventTypeAssigned     TicketEventType = "ASSIGNED"
	EventTypeCommentAdded TicketEventType = "COMMENT_ADDED"
)

// TicketEvent is an append-only history entry. Entries are never updated or
// deleted; derived counters such as the reopen count are recomputed from
// them rather than stored.
type TicketEvent struct {
	ID        string
	TicketID  string
	Type      TicketEventType
	ActorType ActorType
	ActorID   *string
	OldStatus *TicketStatus
	NewStatus *TicketStatus
	Comment   string
	Media     []MediaReference
	CreatedAt time.Time
}

// MediaReference stores metadata for media attached to a comment event.
type MediaReference struct {
	ID            string
	TicketEventID string
	StorageKey    string
	FileName      string
	MimeType      string
	SizeBytes     int64
	CreatedAt     time.Time
}

// ReopenComment is the comment prefix written by the reopen transition; the
// derived reopen count is appended after it.
const ReopenComment = "reopened"
