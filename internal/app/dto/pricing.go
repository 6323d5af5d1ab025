package dto

import (
	"time"

	domainpricing "staybook/internal/domain/pricing"
)

type QuoteDay struct {
	Date        string `json:"date"`
	PriceAmount int64  `json:"price_amount"`
}

// Quote is the priced preview of a stay before a booking is created.
type Quote struct {
	PropertyID string     `json:"property_id"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   time.Time  `json:"check_out"`
	Nights     int        `json:"nights"`
	Total      int64      `json:"total"`
	Currency   string     `json:"currency"`
	PerDay     []QuoteDay `json:"per_day"`
}

func MapQuote(propertyID string, checkIn, checkOut time.Time, q domainpricing.Quote) Quote {
	out := Quote{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     q.Nights,
		Total:      q.Total.Amount,
		Currency:   q.Total.Currency,
		PerDay:     make([]QuoteDay, 0, len(q.PerDay)),
	}
	for _, dp := range q.PerDay {
		out.PerDay = append(out.PerDay, QuoteDay{Date: dp.Day.String(), PriceAmount: dp.Price.Amount})
	}
	return out
}
