package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// CategoryRepo provides access to room_categories.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category for hotelID.
func (r *CategoryRepo) Create(ctx context.Context, hotelID uint64, name string, price model.Cents) (model.RoomCategory, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO room_categories (hotel_id, name, price_cents) VALUES (?,?,?)",
		hotelID, name, int64(price))
	if err != nil {
		return model.RoomCategory{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RoomCategory{}, err
	}
	return model.RoomCategory{ID: uint64(id), HotelID: hotelID, Name: name, Price: price}, nil
}

// GetByID returns a single category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.RoomCategory, error) {
	var c model.RoomCategory
	var price int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, hotel_id, name, price_cents FROM room_categories WHERE id=?", id).
		Scan(&c.ID, &c.HotelID, &c.Name, &price)
	if err != nil {
		return model.RoomCategory{}, notFound(err)
	}
	c.Price = model.Cents(price)
	return c, nil
}

// ListByHotel returns the categories of one hotel.
func (r *CategoryRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomCategory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, hotel_id, name, price_cents FROM room_categories WHERE hotel_id=? ORDER BY id", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RoomCategory{}
	for rows.Next() {
		var c model.RoomCategory
		var price int64
		if err := rows.Scan(&c.ID, &c.HotelID, &c.Name, &price); err != nil {
			return nil, err
		}
		c.Price = model.Cents(price)
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdatePrice changes the category price.  Existing bookings keep the
// price they were reserved at.
func (r *CategoryRepo) UpdatePrice(ctx context.Context, id uint64, price model.Cents) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE room_categories SET price_cents=? WHERE id=?", int64(price), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows also means "same price"; only report a missing row
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
