package booking

import (
	"context"
	"errors"
	"time"

	"flatbook/internal/domain/apartment"
	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/events"
)

var (
	ErrNotFound     = errors.New("booking: not found")
	ErrInvalidState = errors.New("booking: invalid state transition")
	ErrNotGuest     = errors.New("booking: only the guest who made the booking may modify it")
	// ErrRangeConflict is returned by Repository.Commit when a concurrently
	// admitted booking overlaps the candidate range. It signals a lost race,
	// not a bad request.
	ErrRangeConflict = errors.New("booking: date range conflicts with an existing booking")
)

type BookingID string

type BookingState string

const (
	StateActive    BookingState = "ACTIVE"
	StateCancelled BookingState = "CANCELLED"
)

// Booking is created only through the admission flow; its price is always
// the engine-computed quote, never caller input.
type Booking struct {
	ID          BookingID
	ApartmentID apartment.ApartmentID
	GuestID     string
	Range       daterange.DateRange
	Guests      int
	Price       pricing.Breakdown
	State       BookingState
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListActiveByApartment(ctx context.Context, id apartment.ApartmentID) ([]*Booking, error)
	ListByApartment(ctx context.Context, id apartment.ApartmentID) ([]*Booking, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)

	// Commit atomically persists a new or rescheduled booking. The store
	// re-runs the overlap check against Active bookings (excluding the
	// booking itself) inside its per-apartment exclusion scope and returns
	// ErrRangeConflict when the range was taken since the caller's read.
	Commit(ctx context.Context, b *Booking) error

	UpdateState(ctx context.Context, id BookingID, state BookingState) error
}

type CreateParams struct {
	ID          BookingID
	ApartmentID apartment.ApartmentID
	GuestID     string
	Range       daterange.DateRange
	Guests      int
	Price       pricing.Breakdown
	CreatedAt   time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if params.Guests <= 0 {
		return nil, errors.New("booking: guests count must be positive")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ApartmentID: params.ApartmentID,
		GuestID:     params.GuestID,
		Range:       params.Range,
		Guests:      params.Guests,
		Price:       params.Price,
		State:       StateActive,
		CreatedAt:   now,
	}
	b.Record(Admitted{
		BookingID:   b.ID,
		ApartmentID: b.ApartmentID,
		GuestID:     b.GuestID,
		Range:       b.Range,
		Guests:      b.Guests,
		Total:       b.Price.Total,
		At:          now,
	})
	return b, nil
}

// Reschedule replaces range, guest count and price in one step. Callers
// must have re-validated against the apartment's current bookings first.
func (b *Booking) Reschedule(r daterange.DateRange, guests int, price pricing.Breakdown, now time.Time) error {
	if b.State != StateActive {
		return ErrInvalidState
	}
	if err := r.Validate(); err != nil {
		return err
	}
	b.Range = r
	b.Guests = guests
	b.Price = price
	b.UpdatedAt = now.UTC()
	b.Record(Rescheduled{BookingID: b.ID, ApartmentID: b.ApartmentID, Range: r, Total: price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(now time.Time) error {
	if b.State != StateActive {
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(Cancelled{BookingID: b.ID, ApartmentID: b.ApartmentID, At: b.UpdatedAt})
	return nil
}
