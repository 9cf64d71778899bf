package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ReviewRepo provides access to hotel reviews.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewColumns = "id, client_id, hotel_id, text, response, responded_at, created_at"

func scanReview(s rowScanner) (model.Review, error) {
	var (
		rv   model.Review
		resp sql.NullString
		at   sql.NullTime
	)
	if err := s.Scan(&rv.ID, &rv.ClientID, &rv.HotelID, &rv.Text, &resp, &at, &rv.CreatedAt); err != nil {
		return model.Review{}, err
	}
	if resp.Valid {
		rv.Response = &resp.String
	}
	if at.Valid {
		rv.RespondedAt = &at.Time
	}
	return rv, nil
}

// Create stores a review written by clientID.
func (r *ReviewRepo) Create(ctx context.Context, clientID, hotelID uint64, text string) (model.Review, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (client_id, hotel_id, text) VALUES (?,?,?)", clientID, hotelID, text)
	if err != nil {
		return model.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Review{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single review.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	rv, err := scanReview(r.DB.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE id=?", id))
	if err != nil {
		return model.Review{}, notFound(err)
	}
	return rv, nil
}

// ListByHotel returns the hotel's reviews, newest first.
func (r *ReviewRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE hotel_id=? ORDER BY id DESC", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Respond stores the hotel admin's answer.
func (r *ReviewRepo) Respond(ctx context.Context, id uint64, response string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET response=?, responded_at=? WHERE id=?", response, at.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
