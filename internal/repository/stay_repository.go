package repository

import (
	"context"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// StayRepository handles guest stays.
type StayRepository interface {
	Create(ctx context.Context, stay *domain.Stay) error
	GetByID(ctx context.Context, id string) (*domain.Stay, error)
}

type stayRepository struct {
	db DB
}

func (r *stayRepository) Create(ctx context.Context, stay *domain.Stay) error {
	const query = `
        INSERT INTO stays (hotel_id, room_id, guest_id, check_in, check_out)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		stay.HotelID,
		stay.RoomID,
		stay.GuestID,
		stay.CheckIn,
		stay.CheckOut,
	).Scan(&stay.ID, &stay.CreatedAt)
}

func (r *stayRepository) GetByID(ctx context.Context, id string) (*domain.Stay, error) {
	const query = `
        SELECT id, hotel_id, room_id, guest_id, check_in, check_out, created_at
        FROM stays WHERE id=$1`
	var stay domain.Stay
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&stay.ID,
		&stay.HotelID,
		&stay.RoomID,
		&stay.GuestID,
		&stay.CheckIn,
		&stay.CheckOut,
		&stay.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &stay, nil
}
