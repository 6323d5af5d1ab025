package property

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrPropertyNotFound    = errors.New("property: not found")
	ErrPropertyUnavailable = errors.New("property: not open for booking")
	ErrInvalidBasePrice    = errors.New("property: base price must be positive")
)

type PropertyID string

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusPending     Status = "pending"
	StatusMaintenance Status = "maintenance"
	StatusSold        Status = "sold"
)

// Property carries the booking-relevant slice of a rental listing: the
// default nightly rate, sparse per-date rate overrides and the two gates
// that decide whether any date is bookable at all.
type Property struct {
	ID           PropertyID
	HostID       string
	Title        string
	BasePrice    money.Money
	PricePerDate map[daterange.Day]money.Money
	Available    bool
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
}

func New(id PropertyID, hostID, title string, basePrice money.Money, now time.Time) (*Property, error) {
	if basePrice.Amount <= 0 || basePrice.Currency == "" {
		return nil, ErrInvalidBasePrice
	}
	now = now.UTC()
	p := &Property{
		ID:        id,
		HostID:    hostID,
		Title:     title,
		BasePrice: basePrice,
		Available: true,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return p, nil
}

// Bookable is the property-level master gate: the availability switch must be
// on and the listing must be active. Ledger state is checked separately.
func (p *Property) Bookable() bool {
	return p.Available && p.Status == StatusActive
}

// DateRate returns the per-date override for a day, if one is set.
func (p *Property) DateRate(d daterange.Day) (money.Money, bool) {
	if p.PricePerDate == nil {
		return money.Money{}, false
	}
	rate, ok := p.PricePerDate[d]
	return rate, ok
}

// PriceSpan assigns one nightly rate to every day of a range.
type PriceSpan struct {
	Range daterange.DateRange
	Price money.Money
}

// SetDatePricing writes per-date rate overrides from the given spans.
// Spans are applied in input order, so on overlap the later span wins.
func (p *Property) SetDatePricing(spans []PriceSpan, now time.Time) error {
	for _, span := range spans {
		if err := span.Range.Validate(); err != nil {
			return err
		}
		if span.Price.Amount < 0 {
			return ErrInvalidBasePrice
		}
		if span.Price.Currency != p.BasePrice.Currency {
			return money.ErrCurrencyMismatch
		}
	}
	if p.PricePerDate == nil {
		p.PricePerDate = make(map[daterange.Day]money.Money)
	}
	for _, span := range spans {
		for _, day := range span.Range.Days() {
			p.PricePerDate[day] = span.Price
		}
	}
	p.UpdatedAt = now.UTC()
	p.Record(DatePricingUpdated{PropertyID: string(p.ID), Spans: len(spans), At: p.UpdatedAt})
	return nil
}

func (p *Property) Activate(now time.Time) {
	if p.Status == StatusActive {
		return
	}
	p.Status = StatusActive
	p.UpdatedAt = now.UTC()
	p.Record(PropertyActivated{PropertyID: string(p.ID), At: p.UpdatedAt})
}

func (p *Property) Deactivate(now time.Time) {
	if p.Status == StatusInactive {
		return
	}
	p.Status = StatusInactive
	p.UpdatedAt = now.UTC()
	p.Record(PropertyDeactivated{PropertyID: string(p.ID), At: p.UpdatedAt})
}
