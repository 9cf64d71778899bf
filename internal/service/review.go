package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ReviewService lets clients review approved hotels and hotel admins
// answer reviews of their own hotels.
type ReviewService struct {
	Reviews ReviewStore
	Hotels  HotelStore
	Log     *zap.Logger
	Now     func() time.Time
}

// Create stores a review by the caller on an approved hotel.
func (s *ReviewService) Create(ctx context.Context, p model.Principal, hotelID uint64, text string) (model.Review, error) {
	if !p.Can(model.CapWriteReview) {
		return model.Review{}, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Review{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	h, err := s.Hotels.GetByID(ctx, hotelID)
	if err != nil {
		return model.Review{}, fromRepo(err)
	}
	if !h.IsApproved {
		return model.Review{}, ErrNotFound
	}
	rv, err := s.Reviews.Create(ctx, p.UserID, hotelID, text)
	return rv, fromRepo(err)
}

// List returns the reviews of an approved hotel.
func (s *ReviewService) List(ctx context.Context, hotelID uint64) ([]model.Review, error) {
	h, err := s.Hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, fromRepo(err)
	}
	if !h.IsApproved {
		return nil, ErrNotFound
	}
	out, err := s.Reviews.ListByHotel(ctx, hotelID)
	return out, fromRepo(err)
}

// Respond records the hotel admin's answer to a review.  Only the admin
// of the reviewed hotel may respond.
func (s *ReviewService) Respond(ctx context.Context, p model.Principal, reviewID uint64, response string) (model.Review, error) {
	if !p.Can(model.CapRespondReview) {
		return model.Review{}, ErrForbidden
	}
	rv, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return model.Review{}, fromRepo(err)
	}
	h, err := s.Hotels.GetByID(ctx, rv.HotelID)
	if err != nil {
		return model.Review{}, fromRepo(err)
	}
	if !h.OwnedBy(p.UserID) {
		return model.Review{}, ErrForbidden
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	if err := s.Reviews.Respond(ctx, reviewID, response, now); err != nil {
		return model.Review{}, fromRepo(err)
	}
	rv.Response = &response
	rv.RespondedAt = &now
	s.Log.Info("review answered", zap.Uint64("review_id", reviewID), zap.Uint64("hotel_id", h.ID))
	return rv, nil
}
