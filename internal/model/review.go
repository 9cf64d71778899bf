package model

import "time"

// Review is a client's comment on a hotel, optionally answered by the
// hotel's admin.
type Review struct {
	ID          uint64     `json:"id"`
	ClientID    uint64     `json:"client_id"`
	HotelID     uint64     `json:"hotel_id"`
	Text        string     `json:"text"`
	Response    *string    `json:"response,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FinanceReport is a snapshot of a hotel's paid bookings.
type FinanceReport struct {
	ID          uint64    `json:"id"`
	HotelID     uint64    `json:"hotel_id"`
	RoomsPaid   int       `json:"rooms_paid"`
	MoneyEarned Cents     `json:"money_earned"`
	CreatedAt   time.Time `json:"created_at"`
}
