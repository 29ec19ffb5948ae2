package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/booking"
	"flatbook/internal/domain/shared/money"
)

func testApartment(t *testing.T) *domainapartment.Apartment {
	t.Helper()
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:           "apt-1",
		Host:         "host-1",
		Title:        "Canal view apartment",
		Address:      "Kade 14",
		City:         "Amsterdam",
		Country:      "Netherlands",
		Bedrooms:     2,
		Bathrooms:    1,
		MaxOccupancy: 4,
		NightlyRate:  money.Must(10000, "EUR"),
		Now:          day(2026, 1, 1),
	})
	require.NoError(t, err)
	return apt
}

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)
	fields := make([]string, 0, len(vErr.Violations))
	for _, v := range vErr.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func TestValidateHappyPathRequotesPrice(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)
	req := booking.AdmissionRequest{
		ApartmentID: apt.ID,
		GuestID:     "guest-1",
		StartDate:   day(2026, 9, 10),
		EndDate:     day(2026, 9, 14),
		Guests:      3,
	}

	draft, err := booking.Validate(req, apt, nil, "", now)
	require.NoError(t, err)
	assert.Equal(t, 4, draft.Price.Nights)
	assert.Equal(t, money.Must(40000, "EUR"), draft.Price.Total)
	assert.Equal(t, 3, draft.Guests)
}

func TestValidateAccumulatesAllViolations(t *testing.T) {
	apt := testApartment(t)
	require.NoError(t, apt.SetOpenForBooking("host-1", false, day(2026, 1, 2)))
	now := day(2026, 9, 1)

	req := booking.AdmissionRequest{
		ApartmentID: apt.ID,
		GuestID:     "host-1",         // host booking own place
		StartDate:   day(2026, 8, 20), // in the past
		EndDate:     day(2026, 8, 18), // before start
		Guests:      9,                // over occupancy
	}

	_, err := booking.Validate(req, apt, nil, "", now)
	fields := violationFields(t, err)
	assert.ElementsMatch(t, []string{"start_date", "end_date", "guests", "guest_id", "apartment"}, fields)
}

func TestValidateStartMustBeFuture(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)

	// starting today is rejected, tomorrow is fine
	req := booking.AdmissionRequest{ApartmentID: apt.ID, GuestID: "guest-1", StartDate: day(2026, 9, 1), EndDate: day(2026, 9, 3), Guests: 2}
	_, err := booking.Validate(req, apt, nil, "", now)
	assert.Contains(t, violationFields(t, err), "start_date")

	req.StartDate = day(2026, 9, 2)
	_, err = booking.Validate(req, apt, nil, "", now)
	assert.NoError(t, err)
}

func TestValidateSixMonthAdvanceCap(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)

	req := booking.AdmissionRequest{ApartmentID: apt.ID, GuestID: "guest-1", StartDate: day(2027, 3, 1), EndDate: day(2027, 3, 4), Guests: 2}
	_, err := booking.Validate(req, apt, nil, "", now)
	assert.NoError(t, err)

	req.StartDate = day(2027, 3, 2)
	req.EndDate = day(2027, 3, 5)
	_, err = booking.Validate(req, apt, nil, "", now)
	assert.Contains(t, violationFields(t, err), "start_date")
}

func TestValidateOccupancyBoundary(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)
	req := booking.AdmissionRequest{ApartmentID: apt.ID, GuestID: "guest-1", StartDate: day(2026, 9, 10), EndDate: day(2026, 9, 12), Guests: 4}

	_, err := booking.Validate(req, apt, nil, "", now)
	assert.NoError(t, err)

	req.Guests = 5
	_, err = booking.Validate(req, apt, nil, "", now)
	assert.Contains(t, violationFields(t, err), "guests")

	req.Guests = 0
	_, err = booking.Validate(req, apt, nil, "", now)
	assert.Contains(t, violationFields(t, err), "guests")
}

func TestValidateOverlapReported(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)
	existing := []*booking.Booking{
		activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14)),
	}
	req := booking.AdmissionRequest{ApartmentID: apt.ID, GuestID: "guest-2", StartDate: day(2026, 9, 12), EndDate: day(2026, 9, 16), Guests: 2}

	_, err := booking.Validate(req, apt, existing, "", now)
	assert.Equal(t, []string{"date_range"}, violationFields(t, err))
}

func TestValidateOverlapSkippedWhenRangeInvalid(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)
	existing := []*booking.Booking{
		activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14)),
	}
	req := booking.AdmissionRequest{ApartmentID: apt.ID, GuestID: "guest-2", StartDate: day(2026, 9, 12), EndDate: day(2026, 9, 12), Guests: 2}

	_, err := booking.Validate(req, apt, existing, "", now)
	fields := violationFields(t, err)
	assert.Contains(t, fields, "end_date")
	assert.NotContains(t, fields, "date_range")
}

func TestValidateExcludeSelfOnEdit(t *testing.T) {
	apt := testApartment(t)
	now := day(2026, 9, 1)
	existing := []*booking.Booking{
		activeBooking(t, "b-1", day(2026, 9, 10), day(2026, 9, 14)),
	}
	// unchanged dates while editing b-1 must not conflict with itself
	req := booking.AdmissionRequest{ApartmentID: apt.ID, GuestID: "guest-1", StartDate: day(2026, 9, 10), EndDate: day(2026, 9, 14), Guests: 2}

	_, err := booking.Validate(req, apt, existing, "b-1", now)
	assert.NoError(t, err)
}
