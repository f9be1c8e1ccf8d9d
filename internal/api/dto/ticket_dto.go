package dto

import (
	"time"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// CreateTicketRequest is the guest/front-desk ticket creation payload.
// Exactly one of RoomID and ZoneID must be set.
type CreateTicketRequest struct {
	HotelID     string                `json:"hotel_id"`
	ServiceID   string                `json:"service_id"`
	RoomID      *string               `json:"room_id,omitempty"`
	ZoneID      *string               `json:"zone_id,omitempty"`
	StayID      *string               `json:"stay_id,omitempty"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority,omitempty"`
}

// TransitionRequest drives one state-machine action.
type TransitionRequest struct {
	Action     string `json:"action"`
	AssigneeID string `json:"assignee_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// CommentRequest adds a comment, optionally with media references.
type CommentRequest struct {
	Body  string         `json:"body"`
	Media []MediaRequest `json:"media,omitempty"`
}

// MediaRequest references an already-uploaded object.
type MediaRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// TicketSummary is the list-view projection.
type TicketSummary struct {
	ID           string                `json:"id"`
	DisplayCode  string                `json:"display_code"`
	HotelID      string                `json:"hotel_id"`
	DepartmentID string                `json:"department_id"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	AssigneeID   *string               `json:"assignee_staff_id,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// SLAResponse is the live-computed timer reading.
type SLAResponse struct {
	PolicyID             string `json:"policy_id"`
	TargetMinutes        int    `json:"target_minutes"`
	Running              bool   `json:"running"`
	ElapsedActiveSeconds int64  `json:"elapsed_active_seconds"`
	RemainingSeconds     int64  `json:"remaining_seconds"`
	TotalPausedSeconds   int64  `json:"total_paused_seconds"`
	Breached             bool   `json:"breached"`
}

// EventResponse is one history entry.
type EventResponse struct {
	ID        string                 `json:"id"`
	Type      domain.TicketEventType `json:"type"`
	ActorType domain.ActorType       `json:"actor_type"`
	ActorID   *string                `json:"actor_id,omitempty"`
	OldStatus *domain.TicketStatus   `json:"old_status,omitempty"`
	NewStatus *domain.TicketStatus   `json:"new_status,omitempty"`
	Comment   string                 `json:"comment,omitempty"`
	Media     []MediaResponse        `json:"media,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// MediaResponse is attachment metadata.
type MediaResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// TicketDetailResponse is the full aggregate view.
type TicketDetailResponse struct {
	ID           string                `json:"id"`
	DisplayCode  string                `json:"display_code"`
	HotelID      string                `json:"hotel_id"`
	ServiceID    string                `json:"service_id"`
	DepartmentID string                `json:"department_id"`
	StayID       *string               `json:"stay_id,omitempty"`
	RoomID       *string               `json:"room_id,omitempty"`
	ZoneID       *string               `json:"zone_id,omitempty"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatorType  domain.ActorType      `json:"creator_type"`
	AssigneeID   *string               `json:"assignee_staff_id,omitempty"`
	ReopenCount  int                   `json:"reopen_count"`
	SLA          SLAResponse           `json:"sla"`
	Events       []EventResponse       `json:"events"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	CancelledAt  *time.Time            `json:"cancelled_at,omitempty"`
}
