package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// OTPRepo persists email verification codes, one row per user.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Upsert stores code for the user, replacing any previous code.
func (r *OTPRepo) Upsert(ctx context.Context, userID uint64, code string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO one_time_passwords (user_id, code, expires_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE code=VALUES(code), expires_at=VALUES(expires_at)`,
		userID, code, exp.UTC())
	return err
}

// Get returns the user's current code or ErrNotFound.
func (r *OTPRepo) Get(ctx context.Context, userID uint64) (model.OneTimePassword, error) {
	var otp model.OneTimePassword
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, code, expires_at FROM one_time_passwords WHERE user_id=?",
		userID).Scan(&otp.UserID, &otp.Code, &otp.ExpiresAt)
	if err != nil {
		return model.OneTimePassword{}, notFound(err)
	}
	return otp, nil
}

// Delete removes the user's code.
func (r *OTPRepo) Delete(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM one_time_passwords WHERE user_id=?", userID)
	return err
}
