package domain

import "time"

// AuditEntry is a write-only forensic record of a mutating operation.
// Writing one must never fail the primary operation.
type AuditEntry struct {
	ID         string
	Action     string
	ActorType  ActorType
	ActorID    *string
	HotelID    *string
	EntityType string
	EntityID   string
	Metadata   map[string]any
	ClientIP   string
	UserAgent  string
	CreatedAt  time.Time
}
