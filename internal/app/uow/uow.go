package uow

import (
	"context"

	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
)

// UnitOfWork coordinates the storage collaborators inside one transaction
// boundary.
type UnitOfWork interface {
	Apartments() domainapartment.Repository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
