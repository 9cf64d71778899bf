package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// The interfaces below are satisfied by the repository types and by the
// in-memory fakes used in tests.

type BookingStore interface {
	InTx(ctx context.Context, fn func(repository.BookingTx) error) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	PaidTotalsByHotel(ctx context.Context, hotelID uint64) (int, model.Cents, error)
}

type HotelStore interface {
	Create(ctx context.Context, adminID uint64, name, address string) (model.Hotel, error)
	GetByID(ctx context.Context, id uint64) (model.Hotel, error)
	ListApproved(ctx context.Context) ([]model.Hotel, error)
	ListPending(ctx context.Context) ([]model.Hotel, error)
	ListByAdmin(ctx context.Context, adminID uint64) ([]model.Hotel, error)
	SetApproval(ctx context.Context, id uint64, approved bool) error
	Delete(ctx context.Context, id uint64) error
}

type CategoryStore interface {
	Create(ctx context.Context, hotelID uint64, name string, price model.Cents) (model.RoomCategory, error)
	GetByID(ctx context.Context, id uint64) (model.RoomCategory, error)
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomCategory, error)
	UpdatePrice(ctx context.Context, id uint64, price model.Cents) error
}

type RoomStore interface {
	Create(ctx context.Context, hotelID, categoryID uint64, number string) (model.Room, error)
	ListByHotel(ctx context.Context, hotelID uint64, onlyAvailable bool) ([]model.Room, error)
}

type ReviewStore interface {
	Create(ctx context.Context, clientID, hotelID uint64, text string) (model.Review, error)
	GetByID(ctx context.Context, id uint64) (model.Review, error)
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.Review, error)
	Respond(ctx context.Context, id uint64, response string, at time.Time) error
}

type FinanceStore interface {
	Create(ctx context.Context, hotelID uint64, roomsPaid int, earned model.Cents) (model.FinanceReport, error)
	ListAll(ctx context.Context) ([]model.FinanceReport, error)
	ListByAdmin(ctx context.Context, adminID uint64) ([]model.FinanceReport, error)
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.FinanceReport, error)
}

type UserStore interface {
	Create(ctx context.Context, u repository.NewUser, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	MarkVerified(ctx context.Context, id uint64) error
	SetPassword(ctx context.Context, id uint64, password string, cost int) error
	EnsureSystemAdmin(ctx context.Context, email, password string, cost int) error
}

type OTPStore interface {
	Upsert(ctx context.Context, userID uint64, code string, exp time.Time) error
	Get(ctx context.Context, userID uint64) (model.OneTimePassword, error)
	Delete(ctx context.Context, userID uint64) error
}

type PasswordResetStore interface {
	Replace(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Consume(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
}

// Notifier hands messages to the broker.  Implementations must not block
// for long; callers log failures and carry on.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	BookingChanged(ctx context.Context, b model.Booking) error
}
