package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "staybook/internal/domain/booking"
	domaincalendar "staybook/internal/domain/calendar"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

// PropertyRepository is an in-memory implementation for demos and tests.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

// NewPropertyRepository builds an empty repository.
func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{
		items: make(map[domainproperty.PropertyID]*domainproperty.Property),
	}
}

// ByID returns a copy of the stored property or ErrPropertyNotFound.
func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return copyProperty(prop), nil
}

// Save stores the property, bumping its version.
func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Version++
	r.items[p.ID] = copyProperty(p)
	return nil
}

func copyProperty(p *domainproperty.Property) *domainproperty.Property {
	cp := *p
	cp.EventRecorder = events.EventRecorder{}
	cp.PricePerDate = make(map[domainrange.Day]money.Money, len(p.PricePerDate))
	for day, price := range p.PricePerDate {
		cp.PricePerDate[day] = price
	}
	return &cp
}

// CalendarRepository keeps availability ledgers in memory with the same
// optimistic version check the Mongo adapter applies, so conflict paths
// behave identically in both configurations.
type CalendarRepository struct {
	mu      sync.RWMutex
	ledgers map[domainproperty.PropertyID]*domaincalendar.Ledger
}

// NewCalendarRepository returns a repository with no ledgers yet.
func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{
		ledgers: make(map[domainproperty.PropertyID]*domaincalendar.Ledger),
	}
}

// ByProperty returns a snapshot of the ledger. A property without one gets
// an empty ledger, meaning fully available.
func (r *CalendarRepository) ByProperty(ctx context.Context, id domainproperty.PropertyID) (*domaincalendar.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ledger, ok := r.ledgers[id]
	if !ok {
		return domaincalendar.NewLedger(id), nil
	}
	return copyLedger(ledger), nil
}

// Save persists the ledger only when the caller saw the latest version.
func (r *CalendarRepository) Save(ctx context.Context, l *domaincalendar.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.ledgers[l.PropertyID]; ok && current.Version != l.Version {
		return domaincalendar.ErrVersionConflict
	}
	l.Version++
	r.ledgers[l.PropertyID] = copyLedger(l)
	return nil
}

// PropertyIDs lists every property with a stored ledger. The maintenance
// scheduler uses it to fan out cleanup commands.
func (r *CalendarRepository) PropertyIDs(ctx context.Context) ([]domainproperty.PropertyID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]domainproperty.PropertyID, 0, len(r.ledgers))
	for id := range r.ledgers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func copyLedger(l *domaincalendar.Ledger) *domaincalendar.Ledger {
	cp := domaincalendar.NewLedger(l.PropertyID)
	cp.Version = l.Version
	for day, entry := range l.Entries {
		if entry.Price != nil {
			price := *entry.Price
			entry.Price = &price
		}
		cp.Entries[day] = entry
	}
	return cp
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bk, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return copyBooking(bk), nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = copyBooking(b)
	return nil
}

// DueForActivation lists confirmed bookings whose check-in day has arrived.
func (r *BookingRepository) DueForActivation(ctx context.Context, now time.Time) ([]*domainbooking.Booking, error) {
	return r.scan(func(b *domainbooking.Booking) bool {
		return b.Status == domainbooking.StatusConfirmed &&
			domainrange.DayOf(b.Range.CheckIn) <= domainrange.DayOf(now)
	})
}

// DueForCompletion lists active bookings whose checkout day has arrived.
func (r *BookingRepository) DueForCompletion(ctx context.Context, now time.Time) ([]*domainbooking.Booking, error) {
	return r.scan(func(b *domainbooking.Booking) bool {
		return b.Status == domainbooking.StatusActive &&
			domainrange.DayOf(b.Range.CheckOut) <= domainrange.DayOf(now)
	})
}

func (r *BookingRepository) scan(match func(*domainbooking.Booking) bool) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, bk := range r.items {
		if match(bk) {
			matches = append(matches, copyBooking(bk))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func copyBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}
