package apartments

import (
	"context"
	"errors"

	"flatbook/internal/app/uow"
)

var errUnitOfWorkRequired = errors.New("apartments: unit of work required")

func beginOrReuse(ctx context.Context, factory uow.Factory, readOnly bool) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, errUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return nil, ctx, false, err
	}
	return unit, uow.ContextWithUnitOfWork(ctx, unit), true, nil
}
