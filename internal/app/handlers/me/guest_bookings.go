package me

import (
	"context"

	"flatbook/internal/app/dto"
	"flatbook/internal/app/queries"
	"flatbook/internal/app/uow"
)

const listGuestBookingsKey = "me.bookings"

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

// ListGuestBookingsHandler returns every booking, active or cancelled, that
// the requesting guest has made.
type ListGuestBookingsHandler struct {
	Factory uow.Factory
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	items, err := unit.Bookings().ListByGuest(ctx, q.GuestID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookings(items), nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] = (*ListGuestBookingsHandler)(nil)
