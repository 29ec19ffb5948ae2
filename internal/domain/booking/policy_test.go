package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatbook/internal/domain/booking"
)

func TestCheckMutableOutsideWindow(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))

	// 49 hours before check-in
	now := day(2026, 9, 10).Add(-49 * time.Hour)
	assert.NoError(t, booking.CheckMutable(b, now))
}

func TestCheckMutableInsideWindow(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))

	now := day(2026, 9, 10).Add(-47 * time.Hour)
	err := booking.CheckMutable(b, now)
	var pErr *booking.PolicyViolationError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, booking.ReasonWindowExpired, pErr.Reason)
}

func TestCheckMutableExactBoundaryRejected(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))

	// exactly 48h counts as inside the protected window
	now := day(2026, 9, 10).Add(-booking.MutationWindow)
	err := booking.CheckMutable(b, now)
	var pErr *booking.PolicyViolationError
	require.ErrorAs(t, err, &pErr)

	// one minute earlier passes
	assert.NoError(t, booking.CheckMutable(b, now.Add(-time.Minute)))
}

func TestCheckMutableAfterCheckIn(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))

	err := booking.CheckMutable(b, day(2026, 9, 12))
	var pErr *booking.PolicyViolationError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, booking.ReasonWindowExpired, pErr.Reason)
}

func TestCheckMutableCancelledIsTerminal(t *testing.T) {
	b := activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14))
	require.NoError(t, b.Cancel(day(2026, 9, 1)))

	err := booking.CheckMutable(b, day(2026, 9, 1))
	var pErr *booking.PolicyViolationError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, booking.ReasonAlreadyCancelled, pErr.Reason)
}
