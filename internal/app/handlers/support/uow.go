package support

import (
	"context"

	"staybook/internal/app/uow"
)

// BeginUnit reuses a unit of work already bound to the context, or starts a
// managed one from the factory. The returned cleanup is nil when the unit was
// inherited; a managed unit must be committed by the caller and is rolled
// back by cleanup otherwise.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.ContextWithUnitOfWork(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// BeginReadOnlyUnit is BeginUnit with read-only transaction options.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	return BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
}
