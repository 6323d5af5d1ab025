package booking

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID       string
	Reason          string
	IdempotencyKeyV string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CancelBookingCommand) ResultPrototype() any { return &CancelBookingResult{} }

type CancelBookingResult struct {
	BookingID     string `json:"booking_id"`
	RefundAmount  int64  `json:"refund_amount"`
	RefundPercent int    `json:"refund_percent"`
	Currency      string `json:"currency"`
}

// CancelBookingHandler applies the refund tiers and releases the stay's dates.
// The release is unconditional: even a 0% refund frees the calendar.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	scope, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.close()
	ctx = scope.ctx

	bk, err := scope.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refund, percent, err := bk.Cancel(cmd.Reason, now)
	if err != nil {
		return nil, err
	}

	ledger, err := scope.Calendars().ByProperty(ctx, bk.PropertyID)
	if err != nil {
		return nil, err
	}
	ledger.Unblock(bk.Range, now)
	if err := scope.Calendars().Save(ctx, ledger); err != nil {
		return nil, err
	}
	if err := scope.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	if h.Payments != nil && !refund.IsZero() {
		if err := h.Payments.Refund(ctx, string(bk.ID), refund); err != nil {
			return nil, err
		}
	}

	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk, ledger); err != nil {
		return nil, err
	}
	if err := scope.commit(); err != nil {
		return nil, err
	}

	return &CancelBookingResult{
		BookingID:     string(bk.ID),
		RefundAmount:  refund.Amount,
		RefundPercent: percent,
		Currency:      refund.Currency,
	}, nil
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
var _ middleware.IdempotentCommand = CancelBookingCommand{}
