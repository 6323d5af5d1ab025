package ginserver

import (
	"errors"
	"net/http"

	calendarapp "staybook/internal/app/handlers/calendar"
	domainbooking "staybook/internal/domain/booking"
	domaincalendar "staybook/internal/domain/calendar"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
)

// statusFor translates core errors into HTTP statuses; anything unrecognized
// is treated as a storage or wiring failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domaincalendar.ErrLedgerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domaincalendar.ErrDatesUnavailable),
		errors.Is(err, domainproperty.ErrPropertyUnavailable),
		errors.Is(err, domaincalendar.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, domainbooking.ErrNotCancellable),
		errors.Is(err, domainbooking.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, calendarapp.ErrInvalidMonth):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
