package booking

import (
	"context"

	"flatbook/internal/app/dto"
	"flatbook/internal/app/queries"
	"flatbook/internal/app/uow"
	domainbooking "flatbook/internal/domain/booking"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID   string
	RequesterID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// GetBookingHandler returns a single booking to its guest or to the host of
// the booked apartment; anyone else gets a not-found answer rather than a
// hint the booking exists.
type GetBookingHandler struct {
	Factory uow.Factory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.BookingView, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory)
	if err != nil {
		return nil, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	if b.GuestID != q.RequesterID {
		apt, err := unit.Apartments().ByID(ctx, b.ApartmentID)
		if err != nil {
			return nil, err
		}
		if string(apt.Host) != q.RequesterID {
			return nil, domainbooking.ErrNotFound
		}
	}
	view := dto.MapBooking(b)
	return &view, nil
}

var _ queries.Handler[GetBookingQuery, *dto.BookingView] = (*GetBookingHandler)(nil)
