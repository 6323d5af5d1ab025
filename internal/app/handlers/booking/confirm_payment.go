package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domaincalendar "staybook/internal/domain/calendar"
)

const confirmPaymentKey = "booking.confirm_payment"

// blockRetries bounds the reload-and-retry loop on concurrent ledger saves.
const blockRetries = 3

type ConfirmPaymentCommand struct {
	BookingID       string
	IdempotencyKeyV string
}

func (c ConfirmPaymentCommand) Key() string { return confirmPaymentKey }

func (c ConfirmPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ConfirmPaymentCommand) ResultPrototype() any { return &ConfirmPaymentResult{} }

type ConfirmPaymentResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ConfirmPaymentHandler is the gateway webhook target: it flips the booking
// to paid/confirmed and blocks the stay in the property ledger under the
// booking's id. The block re-validates availability, so a competing booking
// that confirmed first makes this one fail with ErrDatesUnavailable — the
// check at create time is only advisory.
type ConfirmPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
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
	if err := bk.ConfirmPayment(now); err != nil {
		return nil, err
	}

	ledger, err := h.blockWithRetry(ctx, scope, bk, now)
	if err != nil {
		if errors.Is(err, domaincalendar.ErrDatesUnavailable) {
			// Lost the race: another booking holds part of the range.
			_ = bk.FailPayment(now)
			if saveErr := scope.Bookings().Save(ctx, bk); saveErr != nil {
				return nil, saveErr
			}
			_ = drainEvents(ctx, h.Outbox, h.Encoder, bk)
			if commitErr := scope.commit(); commitErr != nil {
				return nil, commitErr
			}
		}
		return nil, err
	}

	if err := scope.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk, ledger); err != nil {
		return nil, err
	}
	if err := scope.commit(); err != nil {
		return nil, err
	}

	return &ConfirmPaymentResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

// blockWithRetry reloads the ledger and reapplies the block while concurrent
// saves keep bumping the version. Re-blocking days already held by the same
// booking is a no-op, so the retry never double-applies.
func (h *ConfirmPaymentHandler) blockWithRetry(ctx context.Context, scope *unitScope, bk *domainbooking.Booking, now time.Time) (*domaincalendar.Ledger, error) {
	var lastErr error
	for attempt := 0; attempt <= blockRetries; attempt++ {
		ledger, err := scope.Calendars().ByProperty(ctx, bk.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := ledger.Block(bk.Range, string(bk.ID), now); err != nil {
			// Surface the prevented-overbooking event before failing.
			_ = drainEvents(ctx, h.Outbox, h.Encoder, ledger)
			return nil, err
		}
		if err := scope.Calendars().Save(ctx, ledger); err != nil {
			if errors.Is(err, domaincalendar.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return ledger, nil
	}
	return nil, lastErr
}

var _ commands.Handler[ConfirmPaymentCommand, *ConfirmPaymentResult] = (*ConfirmPaymentHandler)(nil)
var _ middleware.IdempotentCommand = ConfirmPaymentCommand{}
