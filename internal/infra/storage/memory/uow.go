package memory

import (
	"context"
	"errors"

	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ApartmentRepo domainapartment.Repository
	BookingRepo   domainbooking.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports; booking commits stay
// atomic through the repository's own locking.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ApartmentRepo == nil || f.BookingRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		apartments: f.ApartmentRepo,
		bookings:   f.BookingRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	apartments domainapartment.Repository
	bookings   domainbooking.Repository
}

func (u *Unit) Apartments() domainapartment.Repository {
	return u.apartments
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.Factory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
