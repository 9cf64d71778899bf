package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelService covers hotel registration, the approval workflow and the
// inventory (categories and rooms) of approved hotels.
type HotelService struct {
	Hotels     HotelStore
	Categories CategoryStore
	Rooms      RoomStore
	Users      UserStore
	Notifier   Notifier
	Log        *zap.Logger
}

// Register creates a pending hotel owned by the caller.
func (s *HotelService) Register(ctx context.Context, p model.Principal, name, address string) (model.Hotel, error) {
	if !p.Can(model.CapManageHotel) {
		return model.Hotel{}, ErrForbidden
	}
	name, address = strings.TrimSpace(name), strings.TrimSpace(address)
	if name == "" || address == "" {
		return model.Hotel{}, fmt.Errorf("%w: name and address are required", ErrInvalidInput)
	}
	h, err := s.Hotels.Create(ctx, p.UserID, name, address)
	if err != nil {
		return model.Hotel{}, fromRepo(err)
	}
	s.Log.Info("hotel registered", zap.Uint64("hotel_id", h.ID), zap.Uint64("admin_id", p.UserID))
	return h, nil
}

// Mine lists the hotels registered by the caller in every state.
func (s *HotelService) Mine(ctx context.Context, p model.Principal) ([]model.Hotel, error) {
	if !p.Can(model.CapManageHotel) {
		return nil, ErrForbidden
	}
	out, err := s.Hotels.ListByAdmin(ctx, p.UserID)
	return out, fromRepo(err)
}

// ListApproved returns the hotels clients may see.
func (s *HotelService) ListApproved(ctx context.Context) ([]model.Hotel, error) {
	out, err := s.Hotels.ListApproved(ctx)
	return out, fromRepo(err)
}

// GetApproved returns a hotel only when it is approved.
func (s *HotelService) GetApproved(ctx context.Context, id uint64) (model.Hotel, error) {
	h, err := s.Hotels.GetByID(ctx, id)
	if err != nil {
		return model.Hotel{}, fromRepo(err)
	}
	if !h.IsApproved {
		return model.Hotel{}, ErrNotFound
	}
	return h, nil
}

// ListPending returns hotels awaiting a decision.
func (s *HotelService) ListPending(ctx context.Context, p model.Principal) ([]model.Hotel, error) {
	if !p.Can(model.CapApproveHotel) {
		return nil, ErrForbidden
	}
	out, err := s.Hotels.ListPending(ctx)
	return out, fromRepo(err)
}

// Approve marks a hotel approved and clears a previous decline.
func (s *HotelService) Approve(ctx context.Context, p model.Principal, id uint64) error {
	return s.decide(ctx, p, id, true)
}

// Decline marks a hotel declined and clears a previous approval.
func (s *HotelService) Decline(ctx context.Context, p model.Principal, id uint64) error {
	return s.decide(ctx, p, id, false)
}

func (s *HotelService) decide(ctx context.Context, p model.Principal, id uint64, approved bool) error {
	if !p.Can(model.CapApproveHotel) {
		return ErrForbidden
	}
	if err := s.Hotels.SetApproval(ctx, id, approved); err != nil {
		return fromRepo(err)
	}
	state := model.HotelDeclined
	if approved {
		state = model.HotelApproved
	}
	s.Log.Info("hotel decision recorded",
		zap.Uint64("hotel_id", id), zap.String("state", string(state)), zap.Uint64("by_user_id", p.UserID))
	s.notifyAdmin(ctx, id, state)
	return nil
}

// notifyAdmin emails the hotel's admin about a decision.  Failures are
// logged only.
func (s *HotelService) notifyAdmin(ctx context.Context, hotelID uint64, state model.HotelState) {
	if s.Notifier == nil || s.Users == nil {
		return
	}
	h, err := s.Hotels.GetByID(ctx, hotelID)
	if err != nil {
		s.Log.Warn("load hotel for notification failed", zap.Uint64("hotel_id", hotelID), zap.Error(err))
		return
	}
	u, err := s.Users.GetByID(ctx, h.AdminID)
	if err != nil {
		s.Log.Warn("load hotel admin for notification failed", zap.Uint64("hotel_id", hotelID), zap.Error(err))
		return
	}
	subject := fmt.Sprintf("Your hotel %q has been %s", h.Name, state)
	body := fmt.Sprintf("Hi %s,\n\nYour hotel %q at %s has been %s.\n", u.FullName(), h.Name, h.Address, state)
	if err := s.Notifier.SendEmail(ctx, u.Email, subject, body); err != nil {
		s.Log.Warn("hotel decision email failed", zap.Uint64("hotel_id", hotelID), zap.Error(err))
	}
}

// Delete removes a hotel with everything that references it.
func (s *HotelService) Delete(ctx context.Context, p model.Principal, id uint64) error {
	if !p.Can(model.CapDeleteHotel) {
		return ErrForbidden
	}
	if err := s.Hotels.Delete(ctx, id); err != nil {
		return fromRepo(err)
	}
	s.Log.Info("hotel deleted", zap.Uint64("hotel_id", id), zap.Uint64("by_user_id", p.UserID))
	return nil
}

// ownedApproved loads a hotel the caller manages and that is approved.
func (s *HotelService) ownedApproved(ctx context.Context, p model.Principal, hotelID uint64) (model.Hotel, error) {
	if !p.Can(model.CapManageHotel) {
		return model.Hotel{}, ErrForbidden
	}
	h, err := s.Hotels.GetByID(ctx, hotelID)
	if err != nil {
		return model.Hotel{}, fromRepo(err)
	}
	if !h.OwnedBy(p.UserID) {
		return model.Hotel{}, ErrForbidden
	}
	if !h.IsApproved {
		return model.Hotel{}, ErrHotelNotApproved
	}
	return h, nil
}

// AddCategory creates a room category on an approved hotel the caller owns.
func (s *HotelService) AddCategory(ctx context.Context, p model.Principal, hotelID uint64, name string, price model.Cents) (model.RoomCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return model.RoomCategory{}, fmt.Errorf("%w: name and a positive price are required", ErrInvalidInput)
	}
	if _, err := s.ownedApproved(ctx, p, hotelID); err != nil {
		return model.RoomCategory{}, err
	}
	c, err := s.Categories.Create(ctx, hotelID, name, price)
	return c, fromRepo(err)
}

// UpdateCategoryPrice changes a category's price.  Existing bookings keep
// their snapshotted price.
func (s *HotelService) UpdateCategoryPrice(ctx context.Context, p model.Principal, categoryID uint64, price model.Cents) (model.RoomCategory, error) {
	if price <= 0 {
		return model.RoomCategory{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	c, err := s.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return model.RoomCategory{}, fromRepo(err)
	}
	if !p.Can(model.CapManageHotel) {
		return model.RoomCategory{}, ErrForbidden
	}
	h, err := s.Hotels.GetByID(ctx, c.HotelID)
	if err != nil {
		return model.RoomCategory{}, fromRepo(err)
	}
	if !h.OwnedBy(p.UserID) {
		return model.RoomCategory{}, ErrForbidden
	}
	if err := s.Categories.UpdatePrice(ctx, categoryID, price); err != nil {
		return model.RoomCategory{}, fromRepo(err)
	}
	s.Log.Info("category price updated",
		zap.Uint64("category_id", categoryID), zap.Stringer("from", c.Price), zap.Stringer("to", price))
	c.Price = price
	return c, nil
}

// ListCategories lists the categories of an approved hotel.
func (s *HotelService) ListCategories(ctx context.Context, hotelID uint64) ([]model.RoomCategory, error) {
	if _, err := s.GetApproved(ctx, hotelID); err != nil {
		return nil, err
	}
	out, err := s.Categories.ListByHotel(ctx, hotelID)
	return out, fromRepo(err)
}

// AddRoom registers an available room on an approved hotel the caller
// owns.  The category must belong to the same hotel.
func (s *HotelService) AddRoom(ctx context.Context, p model.Principal, hotelID, categoryID uint64, number string) (model.Room, error) {
	number = strings.TrimSpace(number)
	if number == "" || categoryID == 0 {
		return model.Room{}, fmt.Errorf("%w: category_id and number are required", ErrInvalidInput)
	}
	if _, err := s.ownedApproved(ctx, p, hotelID); err != nil {
		return model.Room{}, err
	}
	c, err := s.Categories.GetByID(ctx, categoryID)
	if err != nil {
		if err = fromRepo(err); errors.Is(err, ErrNotFound) {
			return model.Room{}, fmt.Errorf("%w: unknown category", ErrInvalidInput)
		}
		return model.Room{}, err
	}
	if c.HotelID != hotelID {
		return model.Room{}, fmt.Errorf("%w: category belongs to another hotel", ErrInvalidInput)
	}
	r, err := s.Rooms.Create(ctx, hotelID, categoryID, number)
	if err != nil {
		return model.Room{}, fromRepo(err)
	}
	s.Log.Info("room registered", zap.Uint64("hotel_id", hotelID), zap.Uint64("room_id", r.ID), zap.String("number", number))
	return r, nil
}

// ListRooms lists the rooms of an approved hotel.
func (s *HotelService) ListRooms(ctx context.Context, hotelID uint64, onlyAvailable bool) ([]model.Room, error) {
	if _, err := s.GetApproved(ctx, hotelID); err != nil {
		return nil, err
	}
	out, err := s.Rooms.ListByHotel(ctx, hotelID, onlyAvailable)
	return out, fromRepo(err)
}
