package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatbook/internal/domain/booking"
	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/money"
)

func TestNewBookingStartsActiveAndRecordsAdmitted(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))

	assert.Equal(t, booking.StateActive, b.State)
	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.admitted", events[0].EventName())
	assert.Equal(t, "b-1", events[0].AggregateID())
}

func TestNewBookingRejectsBadParams(t *testing.T) {
	_, err := booking.NewBooking(booking.CreateParams{
		ID:          "b-1",
		ApartmentID: "apt-1",
		GuestID:     "",
		Guests:      2,
	})
	assert.Error(t, err)

	_, err = booking.NewBooking(booking.CreateParams{
		ID:          "b-1",
		ApartmentID: "apt-1",
		GuestID:     "guest-1",
		Guests:      0,
	})
	assert.Error(t, err)
}

func TestRescheduleReplacesRangeAndPrice(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))
	b.ClearEvents()

	newRange := mustRange(t, day(2026, 9, 20), day(2026, 9, 22))
	price, err := pricing.Quote(newRange, money.Must(10000, "EUR"))
	require.NoError(t, err)

	require.NoError(t, b.Reschedule(newRange, 3, price, day(2026, 9, 2)))
	assert.True(t, b.Range.Equal(newRange))
	assert.Equal(t, 3, b.Guests)
	assert.Equal(t, 2, b.Price.Nights)
	assert.Equal(t, day(2026, 9, 2), b.UpdatedAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.rescheduled", events[0].EventName())
}

func TestRescheduleCancelledFails(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))
	require.NoError(t, b.Cancel(day(2026, 9, 1)))

	newRange := mustRange(t, day(2026, 9, 20), day(2026, 9, 22))
	err := b.Reschedule(newRange, 2, b.Price, day(2026, 9, 2))
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestCancelIsIdempotentlyGuarded(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))

	require.NoError(t, b.Cancel(day(2026, 9, 1)))
	assert.Equal(t, booking.StateCancelled, b.State)

	err := b.Cancel(day(2026, 9, 1))
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}
