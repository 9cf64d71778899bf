// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumers.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Queue names.  Both queues are durable.
const (
	NotificationQueue = "notifications.email"
	BookingQueue      = "booking.events"
)

// Notification is an outgoing email.  The mail worker delivers it; the
// request that produced it never waits for delivery.
type Notification struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification stamps a notification with a fresh id.
func NewNotification(to, subject, body string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// BookingEvent is published after every committed booking state change.
// It carries enough for the audit log without querying the database.
type BookingEvent struct {
	ID         string              `json:"id"`
	BookingID  uint64              `json:"booking_id"`
	UserID     uint64              `json:"user_id"`
	RoomID     uint64              `json:"room_id"`
	HotelID    uint64              `json:"hotel_id"`
	Status     model.PaymentStatus `json:"status"`
	CheckedOut bool                `json:"checked_out"`
	Amount     model.Cents         `json:"amount"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewBookingEvent snapshots b.  Amount is the paid amount when present,
// otherwise the reserved price.
func NewBookingEvent(b model.Booking) BookingEvent {
	amount := b.Price
	if b.PaidAmount != nil {
		amount = *b.PaidAmount
	}
	return BookingEvent{
		ID:         uuid.NewString(),
		BookingID:  b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		HotelID:    b.HotelID,
		Status:     b.PaymentStatus,
		CheckedOut: b.IsCheckedOut,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
}
