package me

import (
	"context"

	"flatbook/internal/app/dto"
	"flatbook/internal/app/queries"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
)

const listHostBookingsKey = "me.host_bookings"

type ListHostBookingsQuery struct {
	HostID string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

// ListHostBookingsHandler returns the bookings made against every apartment
// the requesting host lists, grouped flat and ordered as the store returns
// them.
type ListHostBookingsHandler struct {
	Factory uow.Factory
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	apartments, err := unit.Apartments().ListByHost(ctx, domainapartment.HostID(q.HostID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	var all []*domainbooking.Booking
	for _, apt := range apartments {
		items, err := unit.Bookings().ListByApartment(ctx, apt.ID)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		all = append(all, items...)
	}
	return dto.MapBookings(all), nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.BookingCollection] = (*ListHostBookingsHandler)(nil)
