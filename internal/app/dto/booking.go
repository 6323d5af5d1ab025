package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
)

type Booking struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"property_id"`
	GuestID          string    `json:"guest_id"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	Guests           int       `json:"guests"`
	TotalAmount      int64     `json:"total_amount"`
	Currency         string    `json:"currency"`
	ConfirmationCode string    `json:"confirmation_code"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	RefundPercent    int       `json:"refund_percent,omitempty"`
	CancelledAt      time.Time `json:"cancelled_at,omitzero"`
	CancelReason     string    `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:               string(b.ID),
		PropertyID:       string(b.PropertyID),
		GuestID:          b.GuestID,
		CheckIn:          b.Range.CheckIn,
		CheckOut:         b.Range.CheckOut,
		Guests:           b.Guests,
		TotalAmount:      b.Total.Amount,
		Currency:         b.Total.Currency,
		ConfirmationCode: b.ConfirmationCode,
		Status:           string(b.Status),
		PaymentStatus:    string(b.Payment),
		RefundPercent:    b.RefundPercent,
		CancelledAt:      b.CancelledAt,
		CancelReason:     b.CancelReason,
		CreatedAt:        b.CreatedAt,
	}
}
