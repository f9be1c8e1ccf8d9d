package domain

import "time"

// ImportRowStatus is the per-row terminal status written by the batch worker.
type ImportRowStatus string

const (
	ImportRowStatusPending  ImportRowStatus = "PENDING"
	ImportRowStatusNotified ImportRowStatus = "NOTIFIED"
	ImportRowStatusError    ImportRowStatus = "ERROR"
)

// ImportRow is one row of a bulk booking import. Rows sharing a GroupID
// describe guests of the same booking; exactly one of them must be marked
// primary. Rows are processed by the bounded batch worker under a wall-clock
// budget.
type ImportRow struct {
	ID          string
	HotelID     string
	GroupID     string
	GuestName   string
	GuestEmail  string
	RoomNumber  string
	CheckIn     time.Time
	CheckOut    time.Time
	IsPrimary   bool
	Status      ImportRowStatus
	ErrorReason *string
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
}
