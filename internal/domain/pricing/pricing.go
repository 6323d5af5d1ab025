package pricing

import (
	"errors"

	"staybook/internal/domain/calendar"
	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrEmptyRange = errors.New("pricing: range covers no nights")

// DayPrice is the resolved nightly rate for a single day.
type DayPrice struct {
	Day   daterange.Day
	Price money.Money
}

// Quote is the priced breakdown of a stay.
type Quote struct {
	Nights int
	PerDay []DayPrice
	Total  money.Money
}

// ForDate resolves the nightly rate for one day. Precedence, applied the same
// way everywhere pricing appears: ledger entry override, then the property's
// per-date rate map, then the base price.
func ForDate(p *property.Property, led *calendar.Ledger, d daterange.Day) money.Money {
	if led != nil {
		if entry, ok := led.Entries[d]; ok && entry.Price != nil {
			return *entry.Price
		}
	}
	if rate, ok := p.DateRate(d); ok {
		return rate
	}
	return p.BasePrice
}

// ForRange prices every covered night of the stay and sums the total.
// Currencies are checked on every addition; a mixed-currency ledger
// override surfaces as money.ErrCurrencyMismatch.
func ForRange(p *property.Property, led *calendar.Ledger, r daterange.DateRange) (Quote, error) {
	if err := r.Validate(); err != nil {
		return Quote{}, err
	}
	days := r.Days()
	if len(days) == 0 {
		return Quote{}, ErrEmptyRange
	}
	quote := Quote{
		Nights: len(days),
		PerDay: make([]DayPrice, 0, len(days)),
		Total:  money.Money{Amount: 0, Currency: p.BasePrice.Currency},
	}
	for _, day := range days {
		rate := ForDate(p, led, day)
		sum, err := quote.Total.Add(rate)
		if err != nil {
			return Quote{}, err
		}
		quote.Total = sum
		quote.PerDay = append(quote.PerDay, DayPrice{Day: day, Price: rate})
	}
	return quote, nil
}
