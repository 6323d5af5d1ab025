package booking

import (
	"time"

	"staybook/internal/domain/shared/money"
)

type BookingCreated struct {
	BookingID  string      `json:"booking_id"`
	PropertyID string      `json:"property_id"`
	GuestID    string      `json:"guest_id"`
	CheckIn    time.Time   `json:"check_in"`
	CheckOut   time.Time   `json:"check_out"`
	Total      money.Money `json:"total"`
	At         time.Time   `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return e.BookingID }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type PaymentConfirmed struct {
	BookingID  string      `json:"booking_id"`
	PropertyID string      `json:"property_id"`
	Total      money.Money `json:"total"`
	At         time.Time   `json:"at"`
}

func (e PaymentConfirmed) EventName() string     { return "booking.payment_confirmed" }
func (e PaymentConfirmed) AggregateID() string   { return e.BookingID }
func (e PaymentConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID     string      `json:"booking_id"`
	PropertyID    string      `json:"property_id"`
	Refund        money.Money `json:"refund"`
	RefundPercent int         `json:"refund_percent"`
	Reason        string      `json:"reason"`
	At            time.Time   `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return e.BookingID }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingActivated struct {
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	At         time.Time `json:"at"`
}

func (e BookingActivated) EventName() string     { return "booking.activated" }
func (e BookingActivated) AggregateID() string   { return e.BookingID }
func (e BookingActivated) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID  string    `json:"booking_id"`
	PropertyID string    `json:"property_id"`
	At         time.Time `json:"at"`
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return e.BookingID }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
