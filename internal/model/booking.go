package model

import "time"

// PaymentStatus is the booking state machine.  The uppercase spelling is
// canonical; it is also what the `bookings.payment_status` enum stores.
type PaymentStatus string

const (
	StatusReserved  PaymentStatus = "RESERVED"
	StatusPaid      PaymentStatus = "PAID"
	StatusCancelled PaymentStatus = "CANCELLED"
)

// HoldsRoom reports whether a booking in this status keeps its room
// unavailable.
func (s PaymentStatus) HoldsRoom() bool {
	return s == StatusReserved || s == StatusPaid
}

// CanTransition reports whether the state machine allows from -> to.
// RESERVED is the only state with outgoing transitions.
func CanTransition(from, to PaymentStatus) bool {
	return from == StatusReserved && (to == StatusPaid || to == StatusCancelled)
}

// Booking is a client's claim on a room for [CheckIn, CheckOut).  Price is
// the category price captured when the booking was reserved; later price
// changes do not affect it.
type Booking struct {
	ID            uint64        `json:"id"`
	UserID        uint64        `json:"user_id"`
	RoomID        uint64        `json:"room_id"`
	HotelID       uint64        `json:"hotel_id"`
	CheckIn       Date          `json:"check_in"`
	CheckOut      Date          `json:"check_out"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Price         Cents         `json:"price"`
	PaidAmount    *Cents        `json:"paid_amount,omitempty"`
	IsCheckedOut  bool          `json:"is_checked_out"`
	CreatedAt     time.Time     `json:"created_at"`
}

// RoomLock is the view of a room read under its row lock while a booking
// is being created.
type RoomLock struct {
	RoomID        uint64
	HotelID       uint64
	IsAvailable   bool
	HotelApproved bool
	Price         Cents
}
