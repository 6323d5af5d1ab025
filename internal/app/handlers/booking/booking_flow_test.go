package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domaincalendar "staybook/internal/domain/calendar"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type testApp struct {
	bus        commands.Bus
	properties *memory.PropertyRepository
	calendars  *memory.CalendarRepository
	bookings   *memory.BookingRepository
	outbox     *memory.Outbox
	payments   *recordingPayments
}

type recordingPayments struct {
	refunds []money.Money
}

func (p *recordingPayments) Refund(ctx context.Context, bookingID string, amount money.Money) error {
	p.refunds = append(p.refunds, amount)
	return nil
}

var _ policies.PaymentsPort = (*recordingPayments)(nil)

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{
		properties: memory.NewPropertyRepository(),
		calendars:  memory.NewCalendarRepository(),
		bookings:   memory.NewBookingRepository(),
		outbox:     memory.NewOutbox(),
		payments:   &recordingPayments{},
	}
	factory := memory.Factory{
		PropertyRepo: app.properties,
		CalendarRepo: app.calendars,
		BookingRepo:  app.bookings,
	}

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, CreateBookingCommand{}.Key(), &CreateBookingHandler{
		UoWFactory: factory, Outbox: app.outbox,
	})
	commands.RegisterHandler(bus, ConfirmPaymentCommand{}.Key(), &ConfirmPaymentHandler{
		UoWFactory: factory, Outbox: app.outbox,
	})
	commands.RegisterHandler(bus, CancelBookingCommand{}.Key(), &CancelBookingHandler{
		UoWFactory: factory, Payments: app.payments, Outbox: app.outbox,
	})
	commands.RegisterHandler(bus, CompleteBookingCommand{}.Key(), &CompleteBookingHandler{
		UoWFactory: factory, Outbox: app.outbox,
	})
	commands.RegisterHandler(bus, LifecycleSweepCommand{}.Key(), &LifecycleSweepHandler{
		UoWFactory: factory, Outbox: app.outbox,
	})

	app.bus = middleware.ChainCommands(
		bus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(app.outbox),
	)
	return app
}

func (a *testApp) seedProperty(t *testing.T, id string, baseAmount int64) {
	t.Helper()
	prop, err := domainproperty.New(domainproperty.PropertyID(id), "host-1", "Lakeside loft", money.Must(baseAmount, "USD"), time.Now().UTC())
	if err != nil {
		t.Fatalf("property.New returned error: %v", err)
	}
	prop.Activate(time.Now().UTC())
	prop.ClearEvents()
	if err := a.properties.Save(context.Background(), prop); err != nil {
		t.Fatalf("seed property: %v", err)
	}
}

func (a *testApp) create(t *testing.T, id, propertyID string, checkIn, checkOut time.Time) *CreateBookingResult {
	t.Helper()
	res, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](context.Background(), a.bus, CreateBookingCommand{
		CommandID:  id,
		PropertyID: propertyID,
		GuestID:    "guest-1",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return res
}

func (a *testApp) confirm(id string) (*ConfirmPaymentResult, error) {
	return commands.Dispatch[ConfirmPaymentCommand, *ConfirmPaymentResult](context.Background(), a.bus, ConfirmPaymentCommand{BookingID: id})
}

func (a *testApp) booking(t *testing.T, id string) *domainbooking.Booking {
	t.Helper()
	bk, err := a.bookings.ByID(context.Background(), domainbooking.BookingID(id))
	if err != nil {
		t.Fatalf("load booking %s: %v", id, err)
	}
	return bk
}

func (a *testApp) ledger(t *testing.T, propertyID string) *domaincalendar.Ledger {
	t.Helper()
	led, err := a.calendars.ByProperty(context.Background(), domainproperty.PropertyID(propertyID))
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	return led
}

func stay(daysOut, nights int) (time.Time, time.Time) {
	checkIn := time.Now().UTC().AddDate(0, 0, daysOut).Truncate(24 * time.Hour)
	return checkIn, checkIn.AddDate(0, 0, nights)
}

func TestBookingFlow_CreateDoesNotBlock(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)
	checkIn, checkOut := stay(30, 3)

	res := app.create(t, "bkg-1", "prop-1", checkIn, checkOut)
	if res.TotalAmount != 30000 || res.Nights != 3 {
		t.Fatalf("unexpected quote: %+v", res)
	}
	if res.ConfirmationCode == "" {
		t.Fatalf("missing confirmation code")
	}

	bk := app.booking(t, "bkg-1")
	if bk.Status != domainbooking.StatusPending || bk.Payment != domainbooking.PaymentPending {
		t.Fatalf("unexpected state: %s/%s", bk.Status, bk.Payment)
	}

	dr, _ := domainrange.New(checkIn, checkOut)
	if !app.ledger(t, "prop-1").RangeAvailable(dr) {
		t.Fatalf("create must not block the ledger")
	}
}

func TestBookingFlow_ConfirmBlocksDates(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)
	checkIn, checkOut := stay(30, 3)
	app.create(t, "bkg-1", "prop-1", checkIn, checkOut)

	res, err := app.confirm("bkg-1")
	if err != nil {
		t.Fatalf("confirm returned error: %v", err)
	}
	if res.Status != string(domainbooking.StatusConfirmed) {
		t.Fatalf("unexpected status %q", res.Status)
	}

	bk := app.booking(t, "bkg-1")
	if bk.Payment != domainbooking.PaymentPaid {
		t.Fatalf("expected paid, got %s", bk.Payment)
	}

	dr, _ := domainrange.New(checkIn, checkOut)
	led := app.ledger(t, "prop-1")
	if led.RangeAvailable(dr) {
		t.Fatalf("confirmed stay not blocked")
	}
	for _, day := range dr.Days() {
		if ref := led.Entries[day].BookingRef; ref != "bkg-1" {
			t.Fatalf("day %s held by %q", day, ref)
		}
	}
}

func TestBookingFlow_LoserOfTheRaceFailsPayment(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)
	checkIn, checkOut := stay(30, 3)

	// Both requests pass the advisory check before either payment confirms.
	app.create(t, "bkg-1", "prop-1", checkIn, checkOut)
	app.create(t, "bkg-2", "prop-1", checkIn.AddDate(0, 0, 1), checkOut.AddDate(0, 0, 1))

	if _, err := app.confirm("bkg-1"); err != nil {
		t.Fatalf("first confirm returned error: %v", err)
	}
	_, err := app.confirm("bkg-2")
	if !errors.Is(err, domaincalendar.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}

	loser := app.booking(t, "bkg-2")
	if loser.Payment != domainbooking.PaymentFailed {
		t.Fatalf("loser payment = %s, want failed", loser.Payment)
	}

	// The winner's hold is untouched.
	winner := app.booking(t, "bkg-1")
	if winner.Status != domainbooking.StatusConfirmed {
		t.Fatalf("winner status = %s", winner.Status)
	}
	led := app.ledger(t, "prop-1")
	dr, _ := domainrange.New(checkIn, checkOut)
	for _, day := range dr.Days() {
		if ref := led.Entries[day].BookingRef; ref != "bkg-1" {
			t.Fatalf("day %s held by %q", day, ref)
		}
	}
}

func TestBookingFlow_CreateRejectsBlockedDates(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)
	checkIn, checkOut := stay(30, 3)
	app.create(t, "bkg-1", "prop-1", checkIn, checkOut)
	if _, err := app.confirm("bkg-1"); err != nil {
		t.Fatalf("confirm returned error: %v", err)
	}

	_, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](context.Background(), app.bus, CreateBookingCommand{
		CommandID:  "bkg-2",
		PropertyID: "prop-1",
		GuestID:    "guest-2",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     1,
	})
	if !errors.Is(err, domaincalendar.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
}

func TestBookingFlow_CreateRejectsUnbookableProperty(t *testing.T) {
	app := newTestApp(t)
	prop, err := domainproperty.New("prop-1", "host-1", "Unlisted", money.Must(10000, "USD"), time.Now().UTC())
	if err != nil {
		t.Fatalf("property.New returned error: %v", err)
	}
	// Left in pending status, never activated.
	prop.ClearEvents()
	if err := app.properties.Save(context.Background(), prop); err != nil {
		t.Fatalf("seed property: %v", err)
	}

	checkIn, checkOut := stay(30, 2)
	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](context.Background(), app.bus, CreateBookingCommand{
		CommandID:  "bkg-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	})
	if !errors.Is(err, domainproperty.ErrPropertyUnavailable) {
		t.Fatalf("expected ErrPropertyUnavailable, got %v", err)
	}
}

func TestBookingFlow_CancelRefundsAndReleases(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)
	checkIn, checkOut := stay(30, 3)
	app.create(t, "bkg-1", "prop-1", checkIn, checkOut)
	if _, err := app.confirm("bkg-1"); err != nil {
		t.Fatalf("confirm returned error: %v", err)
	}

	res, err := commands.Dispatch[CancelBookingCommand, *CancelBookingResult](context.Background(), app.bus, CancelBookingCommand{
		BookingID: "bkg-1",
		Reason:    "change of plans",
	})
	if err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if res.RefundPercent != 100 || res.RefundAmount != 30000 {
		t.Fatalf("unexpected refund: %+v", res)
	}

	if len(app.payments.refunds) != 1 || app.payments.refunds[0].Amount != 30000 {
		t.Fatalf("refund not issued through payments port: %+v", app.payments.refunds)
	}

	dr, _ := domainrange.New(checkIn, checkOut)
	if !app.ledger(t, "prop-1").RangeAvailable(dr) {
		t.Fatalf("cancelled stay still blocked")
	}
	bk := app.booking(t, "bkg-1")
	if bk.Status != domainbooking.StatusCancelled || bk.Payment != domainbooking.PaymentRefunded {
		t.Fatalf("unexpected state: %s/%s", bk.Status, bk.Payment)
	}
}

func TestBookingFlow_LifecycleSweep(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)

	seed := func(id string, checkIn, checkOut time.Time, status domainbooking.Status) {
		dr, err := domainrange.New(checkIn, checkOut)
		if err != nil {
			t.Fatalf("daterange.New returned error: %v", err)
		}
		bk, err := domainbooking.New(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(id),
			PropertyID: "prop-1",
			GuestID:    "guest-1",
			Range:      dr,
			Guests:     2,
			Total:      money.Must(20000, "USD"),
			CreatedAt:  time.Now().UTC().AddDate(0, 0, -30),
		})
		if err != nil {
			t.Fatalf("booking.New returned error: %v", err)
		}
		bk.Status = status
		if status != domainbooking.StatusPending {
			bk.Payment = domainbooking.PaymentPaid
		}
		bk.ClearEvents()
		if err := app.bookings.Save(context.Background(), bk); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
		led := app.ledger(t, "prop-1")
		if err := led.Block(dr, id, time.Now().UTC()); err != nil {
			t.Fatalf("seed block: %v", err)
		}
		led.ClearEvents()
		if err := app.calendars.Save(context.Background(), led); err != nil {
			t.Fatalf("seed ledger: %v", err)
		}
	}

	now := time.Now().UTC()
	// Confirmed and check-in already passed: should activate.
	seed("bkg-due-in", now.AddDate(0, 0, -1), now.AddDate(0, 0, 2), domainbooking.StatusConfirmed)
	// Active and checkout already passed: should complete and release.
	seed("bkg-due-out", now.AddDate(0, 0, -5), now.AddDate(0, 0, -2), domainbooking.StatusActive)
	// Confirmed but still in the future: untouched.
	seed("bkg-future", now.AddDate(0, 0, 10), now.AddDate(0, 0, 12), domainbooking.StatusConfirmed)

	res, err := commands.Dispatch[LifecycleSweepCommand, *LifecycleSweepResult](context.Background(), app.bus, LifecycleSweepCommand{Now: now})
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if res.Activated != 1 || res.Completed != 1 {
		t.Fatalf("unexpected sweep result: %+v", res)
	}

	if got := app.booking(t, "bkg-due-in").Status; got != domainbooking.StatusActive {
		t.Fatalf("due-in status = %s, want active", got)
	}
	if got := app.booking(t, "bkg-due-out").Status; got != domainbooking.StatusCompleted {
		t.Fatalf("due-out status = %s, want completed", got)
	}
	if got := app.booking(t, "bkg-future").Status; got != domainbooking.StatusConfirmed {
		t.Fatalf("future status = %s, want confirmed", got)
	}

	releasedRange, _ := domainrange.New(now.AddDate(0, 0, -5), now.AddDate(0, 0, -2))
	if !app.ledger(t, "prop-1").RangeAvailable(releasedRange) {
		t.Fatalf("completed stay still blocked")
	}
}

func TestBookingFlow_IdempotentCreate(t *testing.T) {
	app := newTestApp(t)
	app.seedProperty(t, "prop-1", 10000)
	checkIn, checkOut := stay(30, 2)

	cmd := CreateBookingCommand{
		CommandID:       "bkg-1",
		PropertyID:      "prop-1",
		GuestID:         "guest-1",
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          2,
		IdempotencyKeyV: "retry-key-1",
	}
	first, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](context.Background(), app.bus, cmd)
	if err != nil {
		t.Fatalf("first dispatch returned error: %v", err)
	}
	cmd.CommandID = "bkg-2"
	second, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](context.Background(), app.bus, cmd)
	if err != nil {
		t.Fatalf("second dispatch returned error: %v", err)
	}
	if second.BookingID != first.BookingID {
		t.Fatalf("replayed result has booking %q, want %q", second.BookingID, first.BookingID)
	}
	if second.ConfirmationCode != first.ConfirmationCode {
		t.Fatalf("replayed confirmation code differs")
	}
	if _, err := app.bookings.ByID(context.Background(), "bkg-2"); !errors.Is(err, domainbooking.ErrBookingNotFound) {
		t.Fatalf("second command executed despite idempotency key")
	}
}
