package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RoomRepo provides access to rooms.  Availability is written only by the
// booking lifecycle through BookingTx.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

// Create inserts an available room.  A duplicate number within the hotel
// yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, hotelID, categoryID uint64, number string) (model.Room, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (hotel_id, category_id, number, is_available) VALUES (?,?,?,1)",
		hotelID, categoryID, number)
	if err != nil {
		if isDuplicate(err) {
			return model.Room{}, ErrConflict
		}
		return model.Room{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Room{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

const roomSelect = `SELECT r.id, r.hotel_id, r.category_id, c.name, c.price_cents, r.number, r.is_available
	FROM rooms r JOIN room_categories c ON c.id = r.category_id`

// GetByID returns a room with its category name and current price.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	row := r.DB.QueryRowContext(ctx, roomSelect+" WHERE r.id=?", id)
	var rm model.Room
	var price int64
	if err := row.Scan(&rm.ID, &rm.HotelID, &rm.CategoryID, &rm.Category, &price, &rm.Number, &rm.IsAvailable); err != nil {
		return model.Room{}, notFound(err)
	}
	rm.Price = model.Cents(price)
	return rm, nil
}

// ListByHotel lists a hotel's rooms, optionally only the available ones.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64, onlyAvailable bool) ([]model.Room, error) {
	q := roomSelect + " WHERE r.hotel_id=?"
	if onlyAvailable {
		q += " AND r.is_available=1"
	}
	q += " ORDER BY r.number"
	rows, err := r.DB.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		var rm model.Room
		var price int64
		if err := rows.Scan(&rm.ID, &rm.HotelID, &rm.CategoryID, &rm.Category, &price, &rm.Number, &rm.IsAvailable); err != nil {
			return nil, err
		}
		rm.Price = model.Cents(price)
		out = append(out, rm)
	}
	return out, rows.Err()
}
