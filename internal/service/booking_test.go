package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/service/servicetest"
)

var today = time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

type bookingFixture struct {
	db       *servicetest.DB
	svc      *service.BookingService
	notifier *servicetest.Notifier
	hotel    model.Hotel
	room     model.Room
	admin    model.Principal
	alice    model.Principal
	bob      model.Principal
	root     model.Principal
}

func setupBooking(t *testing.T) *bookingFixture {
	t.Helper()
	db := servicetest.NewDB()
	n := &servicetest.Notifier{}
	admin := db.SeedUser("admin@hotel.test", model.RoleHotelAdmin)
	alice := db.SeedUser("alice@example.com", model.RoleClient)
	bob := db.SeedUser("bob@example.com", model.RoleClient)
	root := db.SeedUser("root@example.com", model.RoleSystemAdmin)
	hotel := db.SeedHotel(admin.ID, "Seaside", true)
	room := db.SeedRoom(hotel.ID, "101", 10000)

	svc := service.NewBookingService(servicetest.Bookings{DB: db}, servicetest.Hotels{DB: db}, n, zap.NewNop())
	svc.Now = func() time.Time { return today }

	return &bookingFixture{
		db: db, svc: svc, notifier: n, hotel: hotel, room: room,
		admin: model.Principal{UserID: admin.ID, Role: admin.Role},
		alice: model.Principal{UserID: alice.ID, Role: alice.Role},
		bob:   model.Principal{UserID: bob.ID, Role: bob.Role},
		root:  model.Principal{UserID: root.ID, Role: root.Role},
	}
}

func day(offset int) model.Date { return model.NewDate(today.AddDate(0, 0, offset)) }

func (f *bookingFixture) reserve(t *testing.T, p model.Principal) model.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), p, f.room.ID, day(1), day(3))
	require.NoError(t, err)
	return b
}

func TestCreateBooking_ReservesRoom(t *testing.T) {
	f := setupBooking(t)

	b := f.reserve(t, f.alice)

	assert.Equal(t, model.StatusReserved, b.PaymentStatus)
	assert.Equal(t, f.alice.UserID, b.UserID)
	assert.Equal(t, f.hotel.ID, b.HotelID)
	assert.Equal(t, model.Cents(10000), b.Price)
	assert.Nil(t, b.PaidAmount)
	assert.False(t, f.db.Room(f.room.ID).IsAvailable)
	assert.Equal(t, 1, f.notifier.EventCount())
}

func TestCreateBooking_RoomTaken(t *testing.T) {
	f := setupBooking(t)
	f.reserve(t, f.alice)

	_, err := f.svc.CreateBooking(context.Background(), f.bob, f.room.ID, day(1), day(3))

	assert.ErrorIs(t, err, service.ErrUnavailable)
	assert.Len(t, f.db.Bookings(), 1)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		p        model.Principal
		roomID   uint64
		in, out  model.Date
		expected error
	}{
		{"unknown room", f.alice, 9999, day(1), day(2), service.ErrNotFound},
		{"checkout before checkin", f.alice, f.room.ID, day(3), day(2), service.ErrInvalidInput},
		{"same day", f.alice, f.room.ID, day(2), day(2), service.ErrInvalidInput},
		{"past checkin", f.alice, f.room.ID, day(-1), day(2), service.ErrInvalidInput},
		{"missing dates", f.alice, f.room.ID, model.Date{}, model.Date{}, service.ErrInvalidInput},
		{"hotel admin cannot book", f.admin, f.room.ID, day(1), day(2), service.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(ctx, tt.p, tt.roomID, tt.in, tt.out)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
	assert.True(t, f.db.Room(f.room.ID).IsAvailable)
	assert.Empty(t, f.db.Bookings())
}

func TestCreateBooking_UnapprovedHotel(t *testing.T) {
	f := setupBooking(t)
	pending := f.db.SeedHotel(f.admin.UserID, "Pending Inn", false)
	room := f.db.SeedRoom(pending.ID, "1", 5000)

	_, err := f.svc.CreateBooking(context.Background(), f.alice, room.ID, day(1), day(2))

	assert.ErrorIs(t, err, service.ErrUnavailable)
	assert.True(t, f.db.Room(room.ID).IsAvailable)
}

func TestCreateBooking_ConcurrentSingleWinner(t *testing.T) {
	f := setupBooking(t)
	const clients = 20

	principals := make([]model.Principal, clients)
	for i := range principals {
		u := f.db.SeedUser("client"+string(rune('a'+i))+"@example.com", model.RoleClient)
		principals[i] = model.Principal{UserID: u.ID, Role: u.Role}
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		won, denied int
		other       []error
	)
	start := make(chan struct{})
	for _, p := range principals {
		wg.Add(1)
		go func(p model.Principal) {
			defer wg.Done()
			<-start
			_, err := f.svc.CreateBooking(context.Background(), p, f.room.ID, day(1), day(2))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, service.ErrUnavailable):
				denied++
			default:
				other = append(other, err)
			}
		}(p)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, won)
	assert.Equal(t, clients-1, denied)
	assert.Len(t, f.db.Bookings(), 1)
	assert.False(t, f.db.Room(f.room.ID).IsAvailable)
}

func TestPay_Scenario(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)

	_, err := f.svc.Pay(ctx, f.alice, b.ID, 8000)
	assert.ErrorIs(t, err, service.ErrInsufficientPayment)
	got, err := f.svc.Get(ctx, f.alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, got.PaymentStatus)

	paid, err := f.svc.Pay(ctx, f.alice, b.ID, 10000)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAmount)
	assert.Equal(t, model.Cents(10000), *paid.PaidAmount)
	assert.False(t, f.db.Room(f.room.ID).IsAvailable)

	_, err = f.svc.Cancel(ctx, f.bob, b.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestPay_Overpayment(t *testing.T) {
	f := setupBooking(t)
	b := f.reserve(t, f.alice)

	paid, err := f.svc.Pay(context.Background(), f.alice, b.ID, 12550)

	require.NoError(t, err)
	assert.Equal(t, model.Cents(12550), *paid.PaidAmount)
	assert.Equal(t, model.Cents(10000), paid.Price)
}

func TestPay_InvalidTransitions(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()

	b := f.reserve(t, f.alice)
	_, err := f.svc.Pay(ctx, f.alice, b.ID, 10000)
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, f.alice, b.ID, 10000)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = f.svc.Cancel(ctx, f.alice, b.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	f2 := setupBooking(t)
	c := f2.reserve(t, f2.alice)
	_, err = f2.svc.Cancel(ctx, f2.alice, c.ID)
	require.NoError(t, err)
	_, err = f2.svc.Pay(ctx, f2.alice, c.ID, 10000)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = f2.svc.Cancel(ctx, f2.alice, c.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestPay_OwnershipCheckedFirst(t *testing.T) {
	f := setupBooking(t)
	b := f.reserve(t, f.alice)

	_, err := f.svc.Pay(context.Background(), f.bob, b.ID, 1)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.svc.Pay(context.Background(), f.root, b.ID, 10000)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestPay_UnknownBooking(t *testing.T) {
	f := setupBooking(t)

	_, err := f.svc.Pay(context.Background(), f.alice, 4242, 10000)

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCancel_ReleasesRoom(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)

	cancelled, err := f.svc.Cancel(ctx, f.alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.PaymentStatus)
	assert.True(t, f.db.Room(f.room.ID).IsAvailable)

	again, err := f.svc.CreateBooking(ctx, f.bob, f.room.ID, day(1), day(2))
	require.NoError(t, err)
	assert.Equal(t, f.bob.UserID, again.UserID)
}

func TestCancel_SystemAdminMayCancelAny(t *testing.T) {
	f := setupBooking(t)
	b := f.reserve(t, f.alice)

	_, err := f.svc.Cancel(context.Background(), f.admin, b.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	cancelled, err := f.svc.Cancel(context.Background(), f.root, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.PaymentStatus)
}

func TestCheckout(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)

	_, err := f.svc.Checkout(ctx, f.alice, b.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	_, err = f.svc.Pay(ctx, f.alice, b.ID, 10000)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.bob, b.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	events := f.notifier.EventCount()
	out, err := f.svc.Checkout(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.True(t, out.IsCheckedOut)
	assert.Equal(t, model.StatusPaid, out.PaymentStatus)
	assert.Equal(t, events+1, f.notifier.EventCount())

	out, err = f.svc.Checkout(ctx, f.alice, b.ID)
	require.NoError(t, err)
	assert.True(t, out.IsCheckedOut)
	assert.Equal(t, events+1, f.notifier.EventCount(), "repeated checkout must not notify")
	assert.False(t, f.db.Room(f.room.ID).IsAvailable)
}

func TestCheckout_OtherHotelAdminForbidden(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)
	_, err := f.svc.Pay(ctx, f.alice, b.ID, 10000)
	require.NoError(t, err)

	other := f.db.SeedUser("other@hotel.test", model.RoleHotelAdmin)
	_, err = f.svc.Checkout(ctx, model.Principal{UserID: other.ID, Role: other.Role}, b.ID)

	assert.ErrorIs(t, err, service.ErrForbidden)
}

// lockWatch flags hotel lookups made while a booking transaction is open.
type lockWatch struct {
	inTx     atomic.Bool
	leaked   atomic.Bool
	bookings servicetest.Bookings
	hotels   servicetest.Hotels
}

type watchedBookings struct{ *lockWatch }

func (w watchedBookings) InTx(ctx context.Context, fn func(repository.BookingTx) error) error {
	w.inTx.Store(true)
	defer w.inTx.Store(false)
	return w.bookings.InTx(ctx, fn)
}

func (w watchedBookings) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return w.bookings.GetByID(ctx, id)
}

func (w watchedBookings) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return w.bookings.ListByUser(ctx, userID)
}

func (w watchedBookings) PaidTotalsByHotel(ctx context.Context, hotelID uint64) (int, model.Cents, error) {
	return w.bookings.PaidTotalsByHotel(ctx, hotelID)
}

type watchedHotels struct {
	servicetest.Hotels
	*lockWatch
}

func (w watchedHotels) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	if w.inTx.Load() {
		w.leaked.Store(true)
	}
	return w.Hotels.GetByID(ctx, id)
}

func (w watchedHotels) ListByAdmin(ctx context.Context, adminID uint64) ([]model.Hotel, error) {
	if w.inTx.Load() {
		w.leaked.Store(true)
	}
	return w.Hotels.ListByAdmin(ctx, adminID)
}

func TestCheckout_HotelAdminResolvedOutsideTransaction(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)
	_, err := f.svc.Pay(ctx, f.alice, b.ID, 10000)
	require.NoError(t, err)

	w := &lockWatch{bookings: servicetest.Bookings{DB: f.db}, hotels: servicetest.Hotels{DB: f.db}}
	f.svc.Store = watchedBookings{w}
	f.svc.Hotels = watchedHotels{Hotels: w.hotels, lockWatch: w}

	out, err := f.svc.Checkout(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.True(t, out.IsCheckedOut)
	assert.False(t, w.leaked.Load(), "hotel lookup must not run while the room lock is held")
}

func TestPriceSnapshotSurvivesCategoryChange(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)

	cats := servicetest.Categories{DB: f.db}
	require.NoError(t, cats.UpdatePrice(ctx, f.room.CategoryID, 20000))

	_, err := f.svc.Pay(ctx, f.alice, b.ID, 10000)
	require.NoError(t, err)
	got, err := f.svc.Get(ctx, f.alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Cents(10000), got.Price)
}

func TestRetryOnDeadlock(t *testing.T) {
	f := setupBooking(t)
	f.db.TxErrors = []error{
		&mysql.MySQLError{Number: 1213, Message: "Deadlock found"},
		&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"},
	}

	b, err := f.svc.CreateBooking(context.Background(), f.alice, f.room.ID, day(1), day(2))

	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, b.PaymentStatus)
	assert.Equal(t, 3, f.db.TxCalls)
}

func TestRetryExhaustedIsUnavailable(t *testing.T) {
	f := setupBooking(t)
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
	f.db.TxErrors = []error{deadlock, deadlock, deadlock, deadlock}

	_, err := f.svc.CreateBooking(context.Background(), f.alice, f.room.ID, day(1), day(2))

	assert.ErrorIs(t, err, service.ErrUnavailable)
	assert.Equal(t, service.DefaultLockRetries, f.db.TxCalls)
	assert.True(t, f.db.Room(f.room.ID).IsAvailable)
	assert.Empty(t, f.db.Bookings())
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	f := setupBooking(t)
	f.notifier.Err = errors.New("broker down")

	b, err := f.svc.CreateBooking(context.Background(), f.alice, f.room.ID, day(1), day(2))

	require.NoError(t, err)
	assert.NotZero(t, b.ID)
}

func TestGetAndListMine(t *testing.T) {
	f := setupBooking(t)
	ctx := context.Background()
	b := f.reserve(t, f.alice)

	_, err := f.svc.Get(ctx, f.bob, b.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.svc.Get(ctx, f.admin, b.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.root, b.ID)
	assert.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.ID, mine[0].ID)

	theirs, err := f.svc.ListMine(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, service.IsDomainError(service.ErrUnavailable))
	assert.True(t, service.IsDomainError(errors.Join(errors.New("ctx"), service.ErrForbidden)))
	assert.False(t, service.IsDomainError(errors.New("boom")))
}
