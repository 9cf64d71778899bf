package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/report"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/service/servicetest"
)

func TestFinanceReports(t *testing.T) {
	db := servicetest.NewDB()
	ctx := context.Background()
	bookings := service.NewBookingService(servicetest.Bookings{DB: db}, servicetest.Hotels{DB: db}, nil, zap.NewNop())
	bookings.Now = func() time.Time { return today }
	svc := &service.FinanceService{
		Reports:  servicetest.Finance{DB: db},
		Hotels:   servicetest.Hotels{DB: db},
		Bookings: servicetest.Bookings{DB: db},
		Log:      zap.NewNop(),
	}

	admin := principal(db.SeedUser("a@hotel.test", model.RoleHotelAdmin))
	other := principal(db.SeedUser("o@hotel.test", model.RoleHotelAdmin))
	root := principal(db.SeedUser("root@example.com", model.RoleSystemAdmin))
	client := principal(db.SeedUser("c@example.com", model.RoleClient))
	h := db.SeedHotel(admin.UserID, "Inn", true)
	r1 := db.SeedRoom(h.ID, "1", 10000)
	r2 := db.SeedRoom(h.ID, "2", 7550)
	r3 := db.SeedRoom(h.ID, "3", 5000)

	for _, r := range []model.Room{r1, r2} {
		b, err := bookings.CreateBooking(ctx, client, r.ID, day(1), day(2))
		require.NoError(t, err)
		_, err = bookings.Pay(ctx, client, b.ID, b.Price)
		require.NoError(t, err)
	}
	_, err := bookings.CreateBooking(ctx, client, r3.ID, day(1), day(2))
	require.NoError(t, err)

	_, err = svc.Generate(ctx, other, h.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = svc.Generate(ctx, client, h.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	rep, err := svc.Generate(ctx, admin, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.RoomsPaid)
	assert.Equal(t, model.Cents(17550), rep.MoneyEarned)

	_, err = svc.Generate(ctx, root, h.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, root)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	own, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, own, 2)
	none, err := svc.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)
	_, err = svc.List(ctx, client)
	assert.ErrorIs(t, err, service.ErrForbidden)

	data, err := svc.Export(ctx, admin, h.ID)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
