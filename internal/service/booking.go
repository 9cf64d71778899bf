package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// DefaultLockRetries is the number of attempts made when the database
// reports a deadlock or lock wait timeout.
const DefaultLockRetries = 3

// BookingService is the booking lifecycle manager.  It is the only writer
// of rooms.is_available: every state change of a booking and the matching
// change of its room happen in one transaction holding the room row lock.
type BookingService struct {
	Store    BookingStore
	Hotels   HotelStore
	Notifier Notifier
	Log      *zap.Logger
	Retries  int
	Now      func() time.Time
}

// NewBookingService wires a lifecycle manager with default retries.
func NewBookingService(store BookingStore, hotels HotelStore, n Notifier, log *zap.Logger) *BookingService {
	return &BookingService{
		Store:    store,
		Hotels:   hotels,
		Notifier: n,
		Log:      log,
		Retries:  DefaultLockRetries,
		Now:      time.Now,
	}
}

// CreateBooking reserves roomID for [checkIn, checkOut).  The room must be
// available and belong to an approved hotel.  On any failure nothing is
// written.
func (s *BookingService) CreateBooking(ctx context.Context, p model.Principal, roomID uint64, checkIn, checkOut model.Date) (model.Booking, error) {
	if !p.Can(model.CapBookRoom) {
		return model.Booking{}, ErrForbidden
	}
	if roomID == 0 || checkIn.IsZero() || checkOut.IsZero() {
		return model.Booking{}, fmt.Errorf("%w: room_id, check_in and check_out are required", ErrInvalidInput)
	}
	if !checkOut.After(checkIn.Time) {
		return model.Booking{}, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidInput)
	}
	if checkIn.Before(model.NewDate(s.now()).Time) {
		return model.Booking{}, fmt.Errorf("%w: check_in is in the past", ErrInvalidInput)
	}

	var created model.Booking
	err := s.inTx(ctx, "create", func(tx repository.BookingTx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if !room.HotelApproved || !room.IsAvailable {
			return ErrUnavailable
		}
		b := model.Booking{
			UserID:        p.UserID,
			RoomID:        room.RoomID,
			HotelID:       room.HotelID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			PaymentStatus: model.StatusReserved,
			Price:         room.Price,
		}
		if err := tx.Insert(ctx, &b); err != nil {
			return err
		}
		if err := tx.SetRoomAvailable(ctx, room.RoomID, false); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.Log.Info("booking reserved",
		zap.Uint64("booking_id", created.ID), zap.Uint64("room_id", created.RoomID),
		zap.Uint64("user_id", created.UserID), zap.Stringer("price", created.Price))
	s.notify(ctx, created)
	return created, nil
}

// Pay settles a RESERVED booking.  Only the owner may pay and the amount
// must cover the price captured at reservation time.
func (s *BookingService) Pay(ctx context.Context, p model.Principal, bookingID uint64, amount model.Cents) (model.Booking, error) {
	if amount < 0 {
		return model.Booking{}, fmt.Errorf("%w: negative amount", ErrInvalidInput)
	}
	var paid model.Booking
	err := s.withBooking(ctx, "pay", bookingID, func(tx repository.BookingTx, b model.Booking) error {
		if b.UserID != p.UserID {
			return ErrForbidden
		}
		if !model.CanTransition(b.PaymentStatus, model.StatusPaid) {
			return ErrInvalidTransition
		}
		if amount < b.Price {
			return ErrInsufficientPayment
		}
		if err := applyStatus(ctx, tx, &b, model.StatusPaid, &amount); err != nil {
			return err
		}
		b.PaidAmount = &amount
		paid = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.Log.Info("booking paid",
		zap.Uint64("booking_id", paid.ID), zap.Uint64("user_id", p.UserID), zap.Stringer("amount", amount))
	s.notify(ctx, paid)
	return paid, nil
}

// Cancel cancels a RESERVED booking and releases its room.  The owner and
// system admins may cancel.
func (s *BookingService) Cancel(ctx context.Context, p model.Principal, bookingID uint64) (model.Booking, error) {
	var cancelled model.Booking
	err := s.withBooking(ctx, "cancel", bookingID, func(tx repository.BookingTx, b model.Booking) error {
		if b.UserID != p.UserID && !p.Can(model.CapCancelAnyBooking) {
			return ErrForbidden
		}
		if !model.CanTransition(b.PaymentStatus, model.StatusCancelled) {
			return ErrInvalidTransition
		}
		if err := applyStatus(ctx, tx, &b, model.StatusCancelled, nil); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.Log.Info("booking cancelled",
		zap.Uint64("booking_id", cancelled.ID), zap.Uint64("room_id", cancelled.RoomID),
		zap.Uint64("by_user_id", p.UserID))
	s.notify(ctx, cancelled)
	return cancelled, nil
}

// Checkout marks a PAID booking as checked out.  Repeating it is a no-op.
// The owner, the admin of the room's hotel and system admins may check out.
// The room stays unavailable.
func (s *BookingService) Checkout(ctx context.Context, p model.Principal, bookingID uint64) (model.Booking, error) {
	// resolved before the room lock so the transaction runs no query on
	// another pooled connection
	canManage, err := s.managerOf(ctx, p)
	if err != nil {
		return model.Booking{}, err
	}
	var out model.Booking
	changed := false
	err = s.withBooking(ctx, "checkout", bookingID, func(tx repository.BookingTx, b model.Booking) error {
		if !canManage(b) {
			return ErrForbidden
		}
		if b.PaymentStatus != model.StatusPaid {
			return ErrInvalidTransition
		}
		if !b.IsCheckedOut {
			if err := tx.MarkCheckedOut(ctx, b.ID); err != nil {
				return err
			}
			b.IsCheckedOut = true
			changed = true
		}
		out = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	if changed {
		s.Log.Info("booking checked out", zap.Uint64("booking_id", out.ID), zap.Uint64("by_user_id", p.UserID))
		s.notify(ctx, out)
	}
	return out, nil
}

// Get returns a booking visible to p.
func (s *BookingService) Get(ctx context.Context, p model.Principal, bookingID uint64) (model.Booking, error) {
	b, err := s.Store.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, fromRepo(err)
	}
	canManage, err := s.managerOf(ctx, p)
	if err != nil {
		return model.Booking{}, err
	}
	if !canManage(b) {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

// ListMine returns the caller's own bookings.
func (s *BookingService) ListMine(ctx context.Context, p model.Principal) ([]model.Booking, error) {
	out, err := s.Store.ListByUser(ctx, p.UserID)
	return out, fromRepo(err)
}

// managerOf returns a check reporting whether p is the owner of a
// booking, the admin of its hotel or a system admin.
func (s *BookingService) managerOf(ctx context.Context, p model.Principal) (func(model.Booking) bool, error) {
	if p.Can(model.CapCancelAnyBooking) {
		return func(model.Booking) bool { return true }, nil
	}
	owned := map[uint64]bool{}
	if p.Can(model.CapManageHotel) {
		hotels, err := s.Hotels.ListByAdmin(ctx, p.UserID)
		if err != nil {
			return nil, fromRepo(err)
		}
		for _, h := range hotels {
			owned[h.ID] = true
		}
	}
	return func(b model.Booking) bool {
		return b.UserID == p.UserID || owned[b.HotelID]
	}, nil
}

// applyStatus moves b to status and keeps the room's availability in line
// with whether the new status still holds it.
func applyStatus(ctx context.Context, tx repository.BookingTx, b *model.Booking, to model.PaymentStatus, paid *model.Cents) error {
	if err := tx.UpdateStatus(ctx, b.ID, to, paid); err != nil {
		return err
	}
	if b.PaymentStatus.HoldsRoom() != to.HoldsRoom() {
		if err := tx.SetRoomAvailable(ctx, b.RoomID, !to.HoldsRoom()); err != nil {
			return err
		}
	}
	b.PaymentStatus = to
	return nil
}

// withBooking locks the booking's room and then the booking itself before
// handing the booking to fn.
func (s *BookingService) withBooking(ctx context.Context, op string, bookingID uint64, fn func(repository.BookingTx, model.Booking) error) error {
	return s.inTx(ctx, op, func(tx repository.BookingTx) error {
		roomID, err := tx.RoomIDOf(ctx, bookingID)
		if err != nil {
			return err
		}
		if _, err := tx.LockRoom(ctx, roomID); err != nil {
			return err
		}
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		return fn(tx, b)
	})
}

// inTx runs fn in a transaction, retrying on deadlocks and lock wait
// timeouts.  When every attempt hits a lock conflict the caller sees
// ErrUnavailable.
func (s *BookingService) inTx(ctx context.Context, op string, fn func(repository.BookingTx) error) error {
	attempts := s.Retries
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = s.Store.InTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !repository.IsRetryable(err) {
			return fromRepo(err)
		}
		s.Log.Warn("booking transaction hit a lock conflict",
			zap.String("op", op), zap.Int("attempt", i), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %s gave up after lock conflicts: %v", ErrUnavailable, op, err)
}

func (s *BookingService) notify(ctx context.Context, b model.Booking) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.BookingChanged(ctx, b); err != nil {
		s.Log.Warn("booking notification failed",
			zap.Uint64("booking_id", b.ID), zap.String("status", string(b.PaymentStatus)), zap.Error(err))
	}
}

func (s *BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
