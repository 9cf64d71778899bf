package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingTx is the set of statements the booking lifecycle runs inside one
// transaction.  Callers must lock the room before the booking; every
// lifecycle operation follows that order so two transactions never wait on
// each other in opposite directions.
type BookingTx interface {
	// LockRoom takes the exclusive row lock on the room and returns its
	// availability, hotel approval and current category price.
	LockRoom(ctx context.Context, roomID uint64) (model.RoomLock, error)
	// RoomIDOf reads the room of a booking without locking anything.
	RoomIDOf(ctx context.Context, bookingID uint64) (uint64, error)
	// LockBooking takes the exclusive row lock on the booking.
	LockBooking(ctx context.Context, bookingID uint64) (model.Booking, error)
	Insert(ctx context.Context, b *model.Booking) error
	UpdateStatus(ctx context.Context, bookingID uint64, status model.PaymentStatus, paid *model.Cents) error
	MarkCheckedOut(ctx context.Context, bookingID uint64) error
	SetRoomAvailable(ctx context.Context, roomID uint64, available bool) error
}

// BookingRepo provides transactional and read access to bookings.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// InTx runs fn inside a transaction.  The transaction commits when fn
// returns nil and rolls back otherwise.  The error from fn is returned
// unchanged so lock conflicts stay classifiable with IsRetryable.
func (r *BookingRepo) InTx(ctx context.Context, fn func(BookingTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const bookingSelect = `SELECT b.id, b.user_id, b.room_id, r.hotel_id, b.check_in, b.check_out,
	b.payment_status, b.price_cents, b.paid_amount_cents, b.is_checked_out, b.created_at
	FROM bookings b JOIN rooms r ON r.id = b.room_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		in     sql.NullTime
		out    sql.NullTime
		status string
		price  int64
		paid   sql.NullInt64
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.RoomID, &b.HotelID, &in, &out,
		&status, &price, &paid, &b.IsCheckedOut, &b.CreatedAt); err != nil {
		return model.Booking{}, err
	}
	b.CheckIn = model.NewDate(in.Time)
	b.CheckOut = model.NewDate(out.Time)
	b.PaymentStatus = model.PaymentStatus(status)
	b.Price = model.Cents(price)
	if paid.Valid {
		c := model.Cents(paid.Int64)
		b.PaidAmount = &c
	}
	return b, nil
}

// GetByID returns a booking with its hotel resolved through the room.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx, bookingSelect+" WHERE b.id=?", id))
	if err != nil {
		return model.Booking{}, notFound(err)
	}
	return b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, bookingSelect+" WHERE b.user_id=? ORDER BY b.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PaidTotalsByHotel counts the PAID bookings on a hotel's rooms and sums
// their snapshotted prices.
func (r *BookingRepo) PaidTotalsByHotel(ctx context.Context, hotelID uint64) (int, model.Cents, error) {
	var (
		n   int
		sum int64
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(b.price_cents), 0)
		 FROM bookings b JOIN rooms r ON r.id = b.room_id
		 WHERE r.hotel_id = ? AND b.payment_status = 'PAID'`, hotelID).Scan(&n, &sum)
	if err != nil {
		return 0, 0, err
	}
	return n, model.Cents(sum), nil
}

type bookingTx struct{ tx *sql.Tx }

func (t *bookingTx) LockRoom(ctx context.Context, roomID uint64) (model.RoomLock, error) {
	var (
		l     model.RoomLock
		price int64
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT r.id, r.hotel_id, r.is_available, h.is_approved, c.price_cents
		 FROM rooms r
		 JOIN hotels h ON h.id = r.hotel_id
		 JOIN room_categories c ON c.id = r.category_id
		 WHERE r.id = ? FOR UPDATE OF r`, roomID).
		Scan(&l.RoomID, &l.HotelID, &l.IsAvailable, &l.HotelApproved, &price)
	if err != nil {
		return model.RoomLock{}, notFound(err)
	}
	l.Price = model.Cents(price)
	return l, nil
}

func (t *bookingTx) RoomIDOf(ctx context.Context, bookingID uint64) (uint64, error) {
	var roomID uint64
	err := t.tx.QueryRowContext(ctx, "SELECT room_id FROM bookings WHERE id=?", bookingID).Scan(&roomID)
	if err != nil {
		return 0, notFound(err)
	}
	return roomID, nil
}

func (t *bookingTx) LockBooking(ctx context.Context, bookingID uint64) (model.Booking, error) {
	b, err := scanBooking(t.tx.QueryRowContext(ctx, bookingSelect+" WHERE b.id=? FOR UPDATE OF b", bookingID))
	if err != nil {
		return model.Booking{}, notFound(err)
	}
	return b, nil
}

func (t *bookingTx) Insert(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, room_id, check_in, check_out, payment_status, price_cents)
		 VALUES (?,?,?,?,?,?)`,
		b.UserID, b.RoomID, b.CheckIn.String(), b.CheckOut.String(), string(b.PaymentStatus), int64(b.Price))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanBooking(t.tx.QueryRowContext(ctx, bookingSelect+" WHERE b.id=?", id))
	if err != nil {
		return fmt.Errorf("read back booking %d: %w", id, err)
	}
	*b = created
	return nil
}

func (t *bookingTx) UpdateStatus(ctx context.Context, bookingID uint64, status model.PaymentStatus, paid *model.Cents) error {
	var paidArg any
	if paid != nil {
		paidArg = int64(*paid)
	}
	_, err := t.tx.ExecContext(ctx,
		"UPDATE bookings SET payment_status=?, paid_amount_cents=COALESCE(?, paid_amount_cents) WHERE id=?",
		string(status), paidArg, bookingID)
	return err
}

func (t *bookingTx) MarkCheckedOut(ctx context.Context, bookingID uint64) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE bookings SET is_checked_out=1 WHERE id=?", bookingID)
	return err
}

func (t *bookingTx) SetRoomAvailable(ctx context.Context, roomID uint64, available bool) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE rooms SET is_available=? WHERE id=?", available, roomID)
	return err
}
