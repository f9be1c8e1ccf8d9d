package dto

import (
	"time"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// ImportSubmitRequest is a bulk booking upload.
type ImportSubmitRequest struct {
	HotelID string           `json:"hotel_id"`
	Rows    []ImportRowInput `json:"rows"`
}

// ImportRowInput is one guest row of an upload.
type ImportRowInput struct {
	GroupID    string    `json:"group_id,omitempty"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	RoomNumber string    `json:"room_number"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	IsPrimary  bool      `json:"is_primary"`
}

// ImportRowResponse reports one accepted row.
type ImportRowResponse struct {
	ID         string                 `json:"id"`
	GroupID    string                 `json:"group_id"`
	GuestEmail string                 `json:"guest_email"`
	RoomNumber string                 `json:"room_number"`
	Status     domain.ImportRowStatus `json:"status"`
}

// ImportRunResponse summarizes one on-demand bounded drain.
type ImportRunResponse struct {
	Batches   int  `json:"batches"`
	Claimed   int  `json:"claimed"`
	Processed int  `json:"processed"`
	Failed    int  `json:"failed"`
	Drained   bool `json:"drained"`
}
