package apartments

import (
	"context"

	"flatbook/internal/app/dto"
	"flatbook/internal/app/queries"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
)

const (
	listApartmentsKey     = "apartments.list"
	listHostApartmentsKey = "apartments.list_by_host"
)

type ListApartmentsQuery struct{}

func (q ListApartmentsQuery) Key() string { return listApartmentsKey }

type ListApartmentsHandler struct {
	Factory uow.Factory
}

func (h *ListApartmentsHandler) Handle(ctx context.Context, q ListApartmentsQuery) (dto.ApartmentCollection, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory, true)
	if err != nil {
		return dto.ApartmentCollection{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	items, err := unit.Apartments().List(ctx)
	if err != nil {
		return dto.ApartmentCollection{}, err
	}
	return dto.MapApartments(items), nil
}

type ListHostApartmentsQuery struct {
	HostID string
}

func (q ListHostApartmentsQuery) Key() string { return listHostApartmentsKey }

type ListHostApartmentsHandler struct {
	Factory uow.Factory
}

func (h *ListHostApartmentsHandler) Handle(ctx context.Context, q ListHostApartmentsQuery) (dto.ApartmentCollection, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory, true)
	if err != nil {
		return dto.ApartmentCollection{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	items, err := unit.Apartments().ListByHost(ctx, domainapartment.HostID(q.HostID))
	if err != nil {
		return dto.ApartmentCollection{}, err
	}
	return dto.MapApartments(items), nil
}

var _ queries.Handler[ListApartmentsQuery, dto.ApartmentCollection] = (*ListApartmentsHandler)(nil)
var _ queries.Handler[ListHostApartmentsQuery, dto.ApartmentCollection] = (*ListHostApartmentsHandler)(nil)
