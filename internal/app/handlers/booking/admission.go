package booking

import (
	"context"
	"errors"
	"time"

	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
)

// defaultAdmissionAttempts bounds the re-validate-and-retry loop after a
// commit conflict when the handler does not carry its own limit.
const defaultAdmissionAttempts = 3

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type buildFunc func(draft domainbooking.Draft) (*domainbooking.Booking, error)

// admit sequences the admission protocol: read the apartment's Active
// bookings, validate, build the aggregate with a fresh quote, then commit
// atomically. The read may be stale; the commit is the source of truth.
// When the store rejects the commit because a concurrent admission won the
// range, the bookings are re-read and the request fully re-validated before
// the next attempt. An overlap surfacing only on a retry is reported as
// ErrRangeConflict rather than a validation failure, since it reflects a
// lost race and is safe to retry with fresh dates.
func admit(
	ctx context.Context,
	unit uow.UnitOfWork,
	apt *domainapartment.Apartment,
	req domainbooking.AdmissionRequest,
	exclude domainbooking.BookingID,
	now time.Time,
	attempts int,
	build buildFunc,
) (*domainbooking.Booking, error) {
	if attempts < 1 {
		attempts = defaultAdmissionAttempts
	}
	for attempt := 0; attempt < attempts; attempt++ {
		existing, err := unit.Bookings().ListActiveByApartment(ctx, apt.ID)
		if err != nil {
			return nil, err
		}
		draft, err := domainbooking.Validate(req, apt, existing, exclude, now)
		if err != nil {
			if attempt > 0 && isOverlapOnly(err) {
				return nil, domainbooking.ErrRangeConflict
			}
			return nil, err
		}
		b, err := build(draft)
		if err != nil {
			return nil, err
		}
		if err := unit.Bookings().Commit(ctx, b); err != nil {
			if errors.Is(err, domainbooking.ErrRangeConflict) {
				continue
			}
			return nil, err
		}
		return b, nil
	}
	return nil, domainbooking.ErrRangeConflict
}

func isOverlapOnly(err error) bool {
	var vErr *domainbooking.ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	if len(vErr.Violations) == 0 {
		return false
	}
	for _, v := range vErr.Violations {
		if v.Field != "date_range" {
			return false
		}
	}
	return true
}

// beginOrReuse mirrors the transaction middleware contract: handlers reuse
// a unit of work from context when present and otherwise manage their own.
func beginOrReuse(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, false, err
	}
	return unit, uow.ContextWithUnitOfWork(ctx, unit), true, nil
}
