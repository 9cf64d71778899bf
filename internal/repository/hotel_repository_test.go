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

	"github.com/iliyamo/hotel-booking/internal/model"
)

var hotelCols = []string{"id", "admin_id", "name", "address", "is_approved", "is_declined", "created_at"}

func TestHotelCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hotels")).
		WithArgs(uint64(4), "Grand", "1 Main St").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM hotels WHERE id=?")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(hotelCols).AddRow(9, 4, "Grand", "1 Main St", false, false, now))

	h, err := repo.Create(context.Background(), 4, "Grand", "1 Main St")

	require.NoError(t, err)
	assert.Equal(t, uint64(9), h.ID)
	assert.Equal(t, model.HotelPending, h.State())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotelSetApproval(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE hotels SET is_approved=?, is_declined=?")).
		WithArgs(false, true, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetApproval(context.Background(), 9, false))

	// unchanged row: exists
	mock.ExpectExec(regexp.QuoteMeta("UPDATE hotels")).
		WithArgs(true, false, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM hotels")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	require.NoError(t, repo.SetApproval(context.Background(), 9, true))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE hotels")).
		WithArgs(true, false, uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM hotels")).
		WithArgs(uint64(10)).
		WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, repo.SetApproval(context.Background(), 10, true), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotelDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hotels")).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hotels")).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 9))
	assert.ErrorIs(t, repo.Delete(context.Background(), 9), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHotelListPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_approved=0 AND is_declined=0")).
		WillReturnRows(sqlmock.NewRows(hotelCols).
			AddRow(1, 4, "A", "a", false, false, now).
			AddRow(2, 4, "B", "b", false, false, now))

	list, err := repo.ListPending(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate_DuplicateNumber(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs(uint64(1), uint64(2), "101").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), 1, 2, "101")

	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomListByHotel_OnlyAvailable(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.hotel_id=? AND r.is_available=1 ORDER BY r.number")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id", "category_id", "name", "price_cents", "number", "is_available"}).
			AddRow(3, 1, 2, "suite", 20000, "101", true))

	rooms, err := repo.ListByHotel(context.Background(), 1, true)

	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "suite", rooms[0].Category)
	assert.Equal(t, "200.00", rooms[0].Price.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
