package booking

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const (
	completeBookingKey = "booking.complete"
	lifecycleSweepKey  = "booking.lifecycle_sweep"
)

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type CompleteBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CompleteBookingHandler closes an active booking on checkout day and
// releases its dates. The release duplicates what cancellation would have
// done, which keeps the ledger correct if a cancellation never happened.
type CompleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*CompleteBookingResult, error) {
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
	if err := bk.Complete(now); err != nil {
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

	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk, ledger); err != nil {
		return nil, err
	}
	if err := scope.commit(); err != nil {
		return nil, err
	}

	return &CompleteBookingResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

type LifecycleSweepCommand struct {
	Now time.Time
}

func (c LifecycleSweepCommand) Key() string { return lifecycleSweepKey }

type LifecycleSweepResult struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
}

// LifecycleSweepHandler is the daily status sweep: confirmed bookings whose
// check-in day arrived become active, active bookings whose checkout day
// arrived complete and release their dates.
type LifecycleSweepHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *LifecycleSweepHandler) Handle(ctx context.Context, cmd LifecycleSweepCommand) (*LifecycleSweepResult, error) {
	scope, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.close()
	ctx = scope.ctx

	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	result := &LifecycleSweepResult{}

	due, err := scope.Bookings().DueForActivation(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, bk := range due {
		if err := bk.Activate(now); err != nil {
			continue
		}
		if err := scope.Bookings().Save(ctx, bk); err != nil {
			return nil, err
		}
		if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
			return nil, err
		}
		result.Activated++
	}

	ending, err := scope.Bookings().DueForCompletion(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, bk := range ending {
		if err := bk.Complete(now); err != nil {
			continue
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
		if err := drainEvents(ctx, h.Outbox, h.Encoder, bk, ledger); err != nil {
			return nil, err
		}
		result.Completed++
	}

	if err := scope.commit(); err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[CompleteBookingCommand, *CompleteBookingResult] = (*CompleteBookingHandler)(nil)
var _ commands.Handler[LifecycleSweepCommand, *LifecycleSweepResult] = (*LifecycleSweepHandler)(nil)
