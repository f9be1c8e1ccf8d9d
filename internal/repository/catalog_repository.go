package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/KP-1306/vaiyu-sub006/internal/domain"
)

// CatalogRepository reads the per-hotel reference data: departments, the
// service catalog, rooms and zones.
type CatalogRepository interface {
	GetHotel(ctx context.Context, id string) (*domain.Hotel, error)
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	GetService(ctx context.Context, id string) (*domain.ServiceItem, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	GetRoomByNumber(ctx context.Context, hotelID, number string) (*domain.Room, error)
	GetZone(ctx context.Context, id string) (*domain.Zone, error)
}

type catalogRepository struct {
	db DB
}

func (r *catalogRepository) GetHotel(ctx context.Context, id string) (*domain.Hotel, error) {
	const query = `SELECT id, name, timezone, created_at FROM hotels WHERE id=$1`
	var hotel domain.Hotel
	if err := r.db.QueryRow(ctx, query, id).Scan(&hotel.ID, &hotel.Name, &hotel.Timezone, &hotel.CreatedAt); err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (r *catalogRepository) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	const query = `SELECT id, hotel_id, name, is_active, created_at FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.db.QueryRow(ctx, query, id).Scan(&dept.ID, &dept.HotelID, &dept.Name, &dept.IsActive, &dept.CreatedAt); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *catalogRepository) GetService(ctx context.Context, id string) (*domain.ServiceItem, error) {
	const query = `
        SELECT id, hotel_id, department_id, name, default_priority, is_active, created_at
        FROM hotel_services WHERE id=$1`
	return r.scanService(r.db.QueryRow(ctx, query, id))
}

func (r *catalogRepository) scanService(row pgx.Row) (*domain.ServiceItem, error) {
	var svc domain.ServiceItem
	if err := row.Scan(
		&svc.ID,
		&svc.HotelID,
		&svc.DepartmentID,
		&svc.Name,
		&svc.DefaultPriority,
		&svc.IsActive,
		&svc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *catalogRepository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	const query = `SELECT id, hotel_id, number FROM rooms WHERE id=$1`
	var room domain.Room
	if err := r.db.QueryRow(ctx, query, id).Scan(&room.ID, &room.HotelID, &room.Number); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *catalogRepository) GetRoomByNumber(ctx context.Context, hotelID, number string) (*domain.Room, error) {
	const query = `SELECT id, hotel_id, number FROM rooms WHERE hotel_id=$1 AND number=$2`
	var room domain.Room
	if err := r.db.QueryRow(ctx, query, hotelID, number).Scan(&room.ID, &room.HotelID, &room.Number); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *catalogRepository) GetZone(ctx context.Context, id string) (*domain.Zone, error) {
	const query = `SELECT id, hotel_id, name FROM zones WHERE id=$1`
	var zone domain.Zone
	if err := r.db.QueryRow(ctx, query, id).Scan(&zone.ID, &zone.HotelID, &zone.Name); err != nil {
		return nil, err
	}
	return &zone, nil
}
