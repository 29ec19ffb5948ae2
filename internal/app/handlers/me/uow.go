package me

import (
	"context"
	"errors"

	"flatbook/internal/app/uow"
)

var errUnitOfWorkRequired = errors.New("me: unit of work required")

func beginOrReuse(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, errUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, false, err
	}
	return unit, uow.ContextWithUnitOfWork(ctx, unit), true, nil
}
