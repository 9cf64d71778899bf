package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func TestUserCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice@example.com", "Alice", "", sqlmock.AnyArg(), "client", false).
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := repo.Create(context.Background(), NewUser{
		Email: " Alice@Example.com", FirstName: "Alice", Password: "pw", Role: model.RoleClient,
	}, bcrypt.MinCost)

	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), NewUser{Email: "a@b.c", Password: "pw", Role: model.RoleClient}, bcrypt.MinCost)

	assert.ErrorIs(t, err, ErrEmailExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "password_hash",
			"role", "is_active", "is_verified", "created_at", "updated_at"}).
			AddRow(5, "bob@example.com", "Bob", "Smith", "hash", "hotel_admin", true, false, now, now))

	u, err := repo.GetByEmail(context.Background(), "BOB@example.com ")

	require.NoError(t, err)
	assert.Equal(t, model.RoleHotelAdmin, u.Role)
	assert.Equal(t, "Bob Smith", u.FullName())
	assert.False(t, u.IsVerified)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(6)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserEnsureSystemAdmin(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs("root@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.EnsureSystemAdmin(context.Background(), "Root@Example.com", "toor", bcrypt.MinCost))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenValidateRefresh(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTokenRepo(db)
	cols := []string{"user_id", "expires_at", "revoked_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
		WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(8, time.Now().Add(time.Hour), nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
		WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(8, time.Now().Add(time.Hour), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
		WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(8, time.Now().Add(-time.Hour), nil))

	uid, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), uid)
	_, err = repo.ValidateRefresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.ValidateRefresh(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserSetPassword(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=? WHERE id=?")).
		WithArgs(sqlmock.AnyArg(), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPassword(context.Background(), 5, "new-secret", bcrypt.MinCost))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash=?")).
		WithArgs(sqlmock.AnyArg(), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetPassword(context.Background(), 9, "new-secret", bcrypt.MinCost), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetReplace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPasswordResetRepo(db)
	exp := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO password_reset_tokens")).
		WithArgs(uint64(3), "hash", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Replace(context.Background(), 3, "hash", exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetConsume(t *testing.T) {
	now := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"user_id", "expires_at"}

	t.Run("live token", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens WHERE token_hash=?")).
			WithArgs("hash").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(3, now.Add(time.Minute)))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM password_reset_tokens WHERE token_hash=?")).
			WithArgs("hash").
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := NewPasswordResetRepo(db).Consume(context.Background(), "hash", now)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired token is still deleted", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens")).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(3, now.Add(-time.Minute)))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM password_reset_tokens")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := NewPasswordResetRepo(db).Consume(context.Background(), "hash", now)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens")).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(3, now.Add(time.Minute)))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM password_reset_tokens")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := NewPasswordResetRepo(db).Consume(context.Background(), "hash", now)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM password_reset_tokens")).
			WillReturnError(sql.ErrNoRows)

		_, err := NewPasswordResetRepo(db).Consume(context.Background(), "hash", now)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
