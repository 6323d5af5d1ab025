package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrBookingNotFound = errors.New("booking: not found")
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrNotCancellable  = errors.New("booking: cancellation policy forbids cancelling")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Booking tracks one stay through its payment and occupancy lifecycle.
// The ledger is only touched after payment confirms; until then the dates
// stay provisionally open to other requesters.
type Booking struct {
	ID               BookingID
	PropertyID       property.PropertyID
	GuestID          string
	Range            daterange.DateRange
	Guests           int
	Total            money.Money
	ConfirmationCode string
	Status           Status
	Payment          PaymentStatus
	CanCancel        bool
	RefundPercent    int
	CancelledAt      time.Time
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// DueForActivation lists confirmed bookings whose check-in day has arrived.
	DueForActivation(ctx context.Context, now time.Time) ([]*Booking, error)
	// DueForCompletion lists active bookings whose checkout day has arrived.
	DueForCompletion(ctx context.Context, now time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID               BookingID
	PropertyID       property.PropertyID
	GuestID          string
	Range            daterange.DateRange
	Guests           int
	Total            money.Money
	ConfirmationCode string
	CreatedAt        time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:               params.ID,
		PropertyID:       params.PropertyID,
		GuestID:          params.GuestID,
		Range:            params.Range,
		Guests:           params.Guests,
		Total:            params.Total,
		ConfirmationCode: params.ConfirmationCode,
		Status:           StatusPending,
		Payment:          PaymentPending,
		CanCancel:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	b.Record(BookingCreated{
		BookingID:  string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Total:      b.Total,
		At:         now,
	})
	return b, nil
}

// ConfirmPayment records the paid/confirmed transition. A repeated call on an
// already confirmed booking records the event again rather than failing, so
// gateway webhook redelivery behaves as at-least-once.
func (b *Booking) ConfirmPayment(now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.Payment = PaymentPaid
	b.UpdatedAt = now.UTC()
	b.Record(PaymentConfirmed{BookingID: string(b.ID), PropertyID: string(b.PropertyID), Total: b.Total, At: b.UpdatedAt})
	return nil
}

// FailPayment marks the booking as unpayable; used when the ledger rejects
// the block at confirmation time.
func (b *Booking) FailPayment(now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Payment = PaymentFailed
	b.UpdatedAt = now.UTC()
	return nil
}

// Cancel computes the refund tier from days-until-check-in and moves the
// booking to cancelled. Dates are released by the caller unconditionally,
// even at a 0% refund.
func (b *Booking) Cancel(reason string, now time.Time) (money.Money, int, error) {
	if !b.CanCancel {
		return money.Money{}, 0, ErrNotCancellable
	}
	switch b.Status {
	case StatusPending, StatusConfirmed, StatusActive:
	default:
		return money.Money{}, 0, ErrInvalidState
	}
	percent := RefundPercent(DaysUntilCheckIn(b.Range.CheckIn, now))
	refund := b.Total.Percent(percent)
	b.Status = StatusCancelled
	if refund.IsZero() {
		b.Payment = PaymentCancelled
	} else {
		b.Payment = PaymentRefunded
	}
	b.RefundPercent = percent
	b.CancelledAt = now.UTC()
	b.CancelReason = reason
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{
		BookingID:     string(b.ID),
		PropertyID:    string(b.PropertyID),
		Refund:        refund,
		RefundPercent: percent,
		Reason:        reason,
		At:            b.UpdatedAt,
	})
	return refund, percent, nil
}

// Activate moves a confirmed booking into its stay on check-in day.
func (b *Booking) Activate(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusActive
	b.UpdatedAt = now.UTC()
	b.Record(BookingActivated{BookingID: string(b.ID), PropertyID: string(b.PropertyID), At: b.UpdatedAt})
	return nil
}

// Complete closes out an active booking on checkout day.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusActive {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: string(b.ID), PropertyID: string(b.PropertyID), At: b.UpdatedAt})
	return nil
}
