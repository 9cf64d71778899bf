package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/service/servicetest"
)

func TestReviews(t *testing.T) {
	db := servicetest.NewDB()
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &service.ReviewService{
		Reviews: servicetest.Reviews{DB: db},
		Hotels:  servicetest.Hotels{DB: db},
		Log:     zap.NewNop(),
		Now:     func() time.Time { return now },
	}
	ctx := context.Background()
	client := principal(db.SeedUser("c@example.com", model.RoleClient))
	admin := principal(db.SeedUser("a@hotel.test", model.RoleHotelAdmin))
	other := principal(db.SeedUser("o@hotel.test", model.RoleHotelAdmin))
	h := db.SeedHotel(admin.UserID, "Inn", true)
	pending := db.SeedHotel(admin.UserID, "Later", false)

	_, err := svc.Create(ctx, client, pending.ID, "nice")
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.Create(ctx, admin, h.ID, "self praise")
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = svc.Create(ctx, client, h.ID, "   ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	rv, err := svc.Create(ctx, client, h.ID, "Lovely stay")
	require.NoError(t, err)
	assert.Nil(t, rv.Response)

	_, err = svc.Respond(ctx, other, rv.ID, "thanks")
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = svc.Respond(ctx, client, rv.ID, "thanks")
	assert.ErrorIs(t, err, service.ErrForbidden)

	answered, err := svc.Respond(ctx, admin, rv.ID, "Thank you!")
	require.NoError(t, err)
	require.NotNil(t, answered.Response)
	assert.Equal(t, "Thank you!", *answered.Response)
	assert.Equal(t, now, *answered.RespondedAt)

	list, err := svc.List(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Thank you!", *list[0].Response)

	_, err = svc.List(ctx, pending.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
