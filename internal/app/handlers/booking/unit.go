package booking

import (
	"context"

	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/events"
)

// unitScope wraps the managed-vs-inherited unit of work dance shared by the
// write handlers: reuse a unit already bound to the context, otherwise start
// one and own its commit/rollback.
type unitScope struct {
	uow.UnitOfWork
	ctx       context.Context
	managed   bool
	committed bool
}

func beginUnit(ctx context.Context, factory uow.UoWFactory) (*unitScope, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &unitScope{UnitOfWork: unit, ctx: ctx}, nil
	}
	if factory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &unitScope{UnitOfWork: unit, ctx: uow.ContextWithUnitOfWork(ctx, unit), managed: true}, nil
}

// commit finishes a managed unit; inherited units are committed by their owner.
func (s *unitScope) commit() error {
	if !s.managed {
		return nil
	}
	if err := s.UnitOfWork.Commit(s.ctx); err != nil {
		return err
	}
	s.committed = true
	return nil
}

func (s *unitScope) close() {
	if s.managed && !s.committed {
		_ = s.UnitOfWork.Rollback(s.ctx)
	}
}

type eventCarrier interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// drainEvents moves pending aggregate events into the outbox.
func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, carriers ...eventCarrier) error {
	for _, carrier := range carriers {
		pending := carrier.PendingEvents()
		carrier.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
			return err
		}
	}
	return nil
}
