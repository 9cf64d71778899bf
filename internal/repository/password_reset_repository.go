package repository

import (
	"context"
	"database/sql"
	"time"
)

// PasswordResetRepo persists password reset tokens, at most one per user.
// Like refresh tokens, only the SHA-256 hash of the raw token is stored.
type PasswordResetRepo struct{ DB *sql.DB }

func NewPasswordResetRepo(db *sql.DB) *PasswordResetRepo { return &PasswordResetRepo{DB: db} }

// Replace stores tokenHash for the user, invalidating any earlier link.
func (r *PasswordResetRepo) Replace(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at)`,
		userID, tokenHash, exp.UTC())
	return err
}

// Consume deletes the token and returns its owner.  Unknown, expired and
// already used tokens yield ErrNotFound; of two concurrent calls with the
// same token only one succeeds.
func (r *PasswordResetRepo) Consume(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM password_reset_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt)
	if err != nil {
		return 0, notFound(err)
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM password_reset_tokens WHERE token_hash=?", tokenHash)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}
	if now.UTC().After(expiresAt) {
		return 0, ErrNotFound
	}
	return userID, nil
}
