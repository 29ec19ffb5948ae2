package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/booking"
	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(start, end)
	require.NoError(t, err)
	return dr
}

func activeBooking(t *testing.T, id string, start, end time.Time) *booking.Booking {
	t.Helper()
	dr := mustRange(t, start, end)
	price, err := pricing.Quote(dr, money.Must(10000, "EUR"))
	require.NoError(t, err)
	b, err := booking.NewBooking(booking.CreateParams{
		ID:          booking.BookingID(id),
		ApartmentID: domainapartment.ApartmentID("apt-1"),
		GuestID:     "guest-1",
		Range:       dr,
		Guests:      2,
		Price:       price,
		CreatedAt:   day(2026, 1, 1),
	})
	require.NoError(t, err)
	return b
}

func TestIsAvailableEmptyCalendar(t *testing.T) {
	dr := mustRange(t, day(2026, 9, 10), day(2026, 9, 14))
	assert.True(t, booking.IsAvailable(dr, nil, ""))
}

func TestIsAvailableDetectsOverlap(t *testing.T) {
	existing := []*booking.Booking{
		activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14)),
	}
	overlap := mustRange(t, day(2026, 9, 12), day(2026, 9, 16))
	free := mustRange(t, day(2026, 9, 14), day(2026, 9, 18))

	assert.False(t, booking.IsAvailable(overlap, existing, ""))
	// back-to-back is allowed on the half-open model
	assert.True(t, booking.IsAvailable(free, existing, ""))
}

func TestIsAvailableIgnoresCancelled(t *testing.T) {
	cancelled := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))
	require.NoError(t, cancelled.Cancel(day(2026, 9, 1)))

	dr := mustRange(t, day(2026, 9, 10), day(2026, 9, 14))
	assert.True(t, booking.IsAvailable(dr, []*booking.Booking{cancelled}, ""))
}

func TestIsAvailableExcludesOwnBooking(t *testing.T) {
	existing := []*booking.Booking{
		activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14)),
		activeBooking(t, "b-2", day(2026, 9, 20), day(2026, 9, 22)),
	}
	// same dates as b-1: free when editing b-1, taken otherwise
	dr := mustRange(t, day(2026, 9, 10), day(2026, 9, 14))
	assert.True(t, booking.IsAvailable(dr, existing, "b-1"))
	assert.False(t, booking.IsAvailable(dr, existing, "b-2"))
}
