package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domaincalendar "staybook/internal/domain/calendar"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	CommandID       string
	PropertyID      string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	TotalAmount      int64  `json:"total_amount"`
	Currency         string `json:"currency"`
	Nights           int    `json:"nights"`
}

// CreateBookingHandler quotes and persists a pending booking. The ledger is
// not touched here: the dates stay provisionally open until payment confirms,
// and the block at confirmation is what arbitrates concurrent requests.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	scope, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer scope.close()
	ctx = scope.ctx

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}

	prop, err := scope.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if !prop.Bookable() {
		return nil, domainproperty.ErrPropertyUnavailable
	}

	ledger, err := scope.Calendars().ByProperty(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	if !ledger.RangeAvailable(dr) {
		return nil, domaincalendar.ErrDatesUnavailable
	}

	quote, err := domainpricing.ForRange(prop, ledger, dr)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bk, err := domainbooking.New(domainbooking.CreateParams{
		ID:               domainbooking.BookingID(cmd.CommandID),
		PropertyID:       prop.ID,
		GuestID:          cmd.GuestID,
		Range:            dr,
		Guests:           cmd.Guests,
		Total:            quote.Total,
		ConfirmationCode: uuid.NewString(),
		CreatedAt:        now,
	})
	if err != nil {
		return nil, err
	}
	if err := scope.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}
	if err := scope.commit(); err != nil {
		return nil, err
	}

	return &CreateBookingResult{
		BookingID:        string(bk.ID),
		ConfirmationCode: bk.ConfirmationCode,
		TotalAmount:      bk.Total.Amount,
		Currency:         bk.Total.Currency,
		Nights:           quote.Nights,
	}, nil
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
