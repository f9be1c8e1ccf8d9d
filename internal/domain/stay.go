package domain

import "time"

// Stay is a guest's booked occupancy of a room for a date range. Tickets may
// link to a stay; reopen authorization is checked against it.
type Stay struct {
	ID        string
	HotelID   string
	RoomID    string
	GuestID   string
	CheckIn   time.Time
	CheckOut  time.Time
	CreatedAt time.Time
}
