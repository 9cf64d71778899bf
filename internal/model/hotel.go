package model

import "time"

// HotelState is the derived approval state of a hotel.
type HotelState string

const (
	HotelPending  HotelState = "pending"
	HotelApproved HotelState = "approved"
	HotelDeclined HotelState = "declined"
)

// Hotel represents a row in the `hotels` table.  A hotel is registered by
// a hotel admin (AdminID) and becomes visible to clients only after a
// system admin approves it.  IsApproved and IsDeclined are never both set.
type Hotel struct {
	ID         uint64    `json:"id"`
	AdminID    uint64    `json:"admin_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	IsApproved bool      `json:"is_approved"`
	IsDeclined bool      `json:"is_declined"`
	CreatedAt  time.Time `json:"created_at"`
}

// State derives the approval state from the two flags.
func (h Hotel) State() HotelState {
	switch {
	case h.IsApproved:
		return HotelApproved
	case h.IsDeclined:
		return HotelDeclined
	}
	return HotelPending
}

// OwnedBy reports whether userID is the hotel's admin.
func (h Hotel) OwnedBy(userID uint64) bool { return h.AdminID == userID }

// RoomCategory groups rooms of one hotel that share a price.
type RoomCategory struct {
	ID      uint64 `json:"id"`
	HotelID uint64 `json:"hotel_id"`
	Name    string `json:"name"`
	Price   Cents  `json:"price"`
}

// Room is a bookable unit.  IsAvailable is owned by the booking lifecycle
// and is never written from a client request.
type Room struct {
	ID          uint64 `json:"id"`
	HotelID     uint64 `json:"hotel_id"`
	CategoryID  uint64 `json:"category_id"`
	Category    string `json:"category"`
	Price       Cents  `json:"price"`
	Number      string `json:"number"`
	IsAvailable bool   `json:"is_available"`
}
