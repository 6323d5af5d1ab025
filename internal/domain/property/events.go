package property

import "time"

type PropertyActivated struct {
	PropertyID string    `json:"property_id"`
	At         time.Time `json:"at"`
}

func (e PropertyActivated) EventName() string     { return "property.activated" }
func (e PropertyActivated) AggregateID() string   { return e.PropertyID }
func (e PropertyActivated) OccurredAt() time.Time { return e.At }

type PropertyDeactivated struct {
	PropertyID string    `json:"property_id"`
	At         time.Time `json:"at"`
}

func (e PropertyDeactivated) EventName() string     { return "property.deactivated" }
func (e PropertyDeactivated) AggregateID() string   { return e.PropertyID }
func (e PropertyDeactivated) OccurredAt() time.Time { return e.At }

type DatePricingUpdated struct {
	PropertyID string    `json:"property_id"`
	Spans      int       `json:"spans"`
	At         time.Time `json:"at"`
}

func (e DatePricingUpdated) EventName() string     { return "property.pricing_updated" }
func (e DatePricingUpdated) AggregateID() string   { return e.PropertyID }
func (e DatePricingUpdated) OccurredAt() time.Time { return e.At }
