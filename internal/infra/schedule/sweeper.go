package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	calendarapp "staybook/internal/app/handlers/calendar"
	domainproperty "staybook/internal/domain/property"
)

// LedgerLister enumerates properties that have a persisted calendar ledger.
type LedgerLister interface {
	PropertyIDs(ctx context.Context) ([]domainproperty.PropertyID, error)
}

// Sweeper drives the time-based lifecycle transitions: activating and
// completing bookings once their dates pass, and pruning ledger entries
// past the retention window. Each tick dispatches regular commands so the
// transitions run through the same middleware pipeline as API calls.
type Sweeper struct {
	Commands        commands.Bus
	Ledgers         LedgerLister
	Logger          *slog.Logger
	SweepInterval   time.Duration
	CleanupInterval time.Duration
}

var ErrSweeperNotConfigured = errors.New("schedule: sweeper missing dependencies")

func (s *Sweeper) Run(ctx context.Context) error {
	if s.Commands == nil || s.Ledgers == nil {
		return ErrSweeperNotConfigured
	}
	sweep := time.NewTicker(s.sweepInterval())
	defer sweep.Stop()
	cleanup := time.NewTicker(s.cleanupInterval())
	defer cleanup.Stop()

	// Run both passes once on startup so a restarted process catches up
	// without waiting a full interval.
	s.runLifecycleSweep(ctx)
	s.runCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			s.runLifecycleSweep(ctx)
		case <-cleanup.C:
			s.runCleanup(ctx)
		}
	}
}

func (s *Sweeper) runLifecycleSweep(ctx context.Context) {
	res, err := commands.Dispatch[bookingapp.LifecycleSweepCommand, *bookingapp.LifecycleSweepResult](
		ctx, s.Commands, bookingapp.LifecycleSweepCommand{Now: time.Now().UTC()})
	if err != nil {
		s.logger().ErrorContext(ctx, "lifecycle sweep failed", "error", err)
		return
	}
	if res.Activated > 0 || res.Completed > 0 {
		s.logger().InfoContext(ctx, "lifecycle sweep done",
			"activated", res.Activated, "completed", res.Completed)
	}
}

func (s *Sweeper) runCleanup(ctx context.Context) {
	ids, err := s.Ledgers.PropertyIDs(ctx)
	if err != nil {
		s.logger().ErrorContext(ctx, "cleanup listing failed", "error", err)
		return
	}
	now := time.Now().UTC()
	for _, id := range ids {
		res, err := commands.Dispatch[calendarapp.CleanupCommand, *calendarapp.CleanupResult](
			ctx, s.Commands, calendarapp.CleanupCommand{PropertyID: string(id), Now: now})
		if err != nil {
			s.logger().ErrorContext(ctx, "calendar cleanup failed", "property_id", string(id), "error", err)
			continue
		}
		if res.Removed > 0 {
			s.logger().InfoContext(ctx, "calendar cleanup done",
				"property_id", string(id), "removed", res.Removed)
		}
	}
}

func (s *Sweeper) sweepInterval() time.Duration {
	if s.SweepInterval <= 0 {
		return 24 * time.Hour
	}
	return s.SweepInterval
}

func (s *Sweeper) cleanupInterval() time.Duration {
	if s.CleanupInterval <= 0 {
		return 24 * time.Hour
	}
	return s.CleanupInterval
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
