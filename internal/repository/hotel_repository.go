package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelRepo provides access to the hotels table.
type HotelRepo struct{ DB *sql.DB }

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{DB: db} }

const hotelColumns = "id, admin_id, name, address, is_approved, is_declined, created_at"

// Create inserts a pending hotel owned by adminID.
func (r *HotelRepo) Create(ctx context.Context, adminID uint64, name, address string) (model.Hotel, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO hotels (admin_id, name, address) VALUES (?,?,?)",
		adminID, name, address)
	if err != nil {
		return model.Hotel{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Hotel{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a hotel regardless of its approval state.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	var h model.Hotel
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE id=?", id).
		Scan(&h.ID, &h.AdminID, &h.Name, &h.Address, &h.IsApproved, &h.IsDeclined, &h.CreatedAt)
	if err != nil {
		return model.Hotel{}, notFound(err)
	}
	return h, nil
}

// ListApproved returns hotels visible to clients.
func (r *HotelRepo) ListApproved(ctx context.Context) ([]model.Hotel, error) {
	return r.list(ctx, "SELECT "+hotelColumns+" FROM hotels WHERE is_approved=1 ORDER BY id")
}

// ListPending returns hotels awaiting a decision.
func (r *HotelRepo) ListPending(ctx context.Context) ([]model.Hotel, error) {
	return r.list(ctx, "SELECT "+hotelColumns+" FROM hotels WHERE is_approved=0 AND is_declined=0 ORDER BY id")
}

// ListByAdmin returns every hotel registered by adminID.
func (r *HotelRepo) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Hotel, error) {
	return r.list(ctx, "SELECT "+hotelColumns+" FROM hotels WHERE admin_id=? ORDER BY id", adminID)
}

// SetApproval records a decision.  Both flags are written in one statement
// so a hotel is never approved and declined at the same time.
func (r *HotelRepo) SetApproval(ctx context.Context, id uint64, approved bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE hotels SET is_approved=?, is_declined=? WHERE id=?",
		approved, !approved, id)
	if err != nil {
		return err
	}
	return r.mustExist(ctx, res, id)
}

// Delete removes a hotel; rooms, categories, bookings and reviews cascade.
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM hotels WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// mustExist distinguishes "no row" from "row unchanged" when an UPDATE
// affects zero rows.
func (r *HotelRepo) mustExist(ctx context.Context, res sql.Result, id uint64) error {
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM hotels WHERE id=?", id).Scan(&one)
	return notFound(err)
}

func (r *HotelRepo) list(ctx context.Context, q string, args ...any) ([]model.Hotel, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Hotel{}
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.AdminID, &h.Name, &h.Address, &h.IsApproved, &h.IsDeclined, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
