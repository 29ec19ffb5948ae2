package mongo

import (
	"context"
	"errors"

	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
)

// Factory wires Mongo repositories into the generic UnitOfWork interface.
// Booking range exclusivity does not depend on transactions; it is enforced
// by the advisory lock inside BookingRepository.Commit. The unit boundary
// exists so handlers stay storage-agnostic.
type Factory struct {
	ApartmentRepo domainapartment.Repository
	BookingRepo   domainbooking.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing repositories")

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ApartmentRepo == nil || f.BookingRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	return &Unit{
		apartments: f.ApartmentRepo,
		bookings:   f.BookingRepo,
	}, nil
}

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
