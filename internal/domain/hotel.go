package domain

import "time"

// Hotel is the tenant scope for everything else.
type Hotel struct {
	ID        string
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// Department represents an operational unit within a hotel (housekeeping,
// food and beverage, maintenance).
type Department struct {
	ID        string
	HotelID   string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// ServiceItem is a catalog entry guests can raise requests against. The
// ticket title is snapshotted from Name at creation time.
type ServiceItem struct {
	ID              string
	HotelID         string
	DepartmentID    string
	Name            string
	DefaultPriority TicketPriority
	IsActive        bool
	CreatedAt       time.Time
}

// Room is a bookable guest room.
type Room struct {
	ID      string
	HotelID string
	Number  string
}

// Zone is a common area (lobby, pool, gym) that tickets can be located at.
type Zone struct {
	ID      string
	HotelID string
	Name    string
}
