package booking

import (
	"fmt"
	"strings"
	"time"

	"flatbook/internal/domain/apartment"
	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/daterange"
)

// Bookings may start no further out than six months; mirrors the booking
// form's maximum start date.
const maxAdvanceMonths = 6

// RuleViolation names a single failed business rule, keyed by the request
// field it concerns.
type RuleViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated rule; callers report all problems
// at once instead of the first one found.
type ValidationError struct {
	Violations []RuleViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+": "+v.Message)
	}
	return "booking: validation failed: " + strings.Join(msgs, "; ")
}

// AdmissionRequest is the trusted input for create and reschedule. There is
// no total price field on purpose; the quote is always recomputed.
type AdmissionRequest struct {
	ApartmentID apartment.ApartmentID
	GuestID     string
	StartDate   time.Time
	EndDate     time.Time
	Guests      int
}

// Draft is a validated, normalized admission: dates snapped to UTC days and
// the price re-quoted from the apartment's nightly rate.
type Draft struct {
	Range  daterange.DateRange
	Guests int
	Price  pricing.Breakdown
}

// Validate runs every business rule for create/edit against the apartment
// and its current Active bookings, accumulating all failures. exclude skips
// the booking being edited in the overlap scan; pass "" for creation.
func Validate(req AdmissionRequest, apt *apartment.Apartment, existing []*Booking, exclude BookingID, now time.Time) (Draft, error) {
	var violations []RuleViolation

	today := daterange.Day(now)
	start := daterange.Day(req.StartDate)
	end := daterange.Day(req.EndDate)

	if !start.After(today) {
		violations = append(violations, RuleViolation{Field: "start_date", Message: "start date must be in the future"})
	} else if start.After(today.AddDate(0, maxAdvanceMonths, 0)) {
		violations = append(violations, RuleViolation{
			Field:   "start_date",
			Message: fmt.Sprintf("start date must be within %d months", maxAdvanceMonths),
		})
	}

	rangeValid := end.After(start)
	if !rangeValid {
		violations = append(violations, RuleViolation{Field: "end_date", Message: "end date must be after start date"})
	}

	if req.Guests < 1 {
		violations = append(violations, RuleViolation{Field: "guests", Message: "at least one guest is required"})
	} else if req.Guests > apt.MaxOccupancy {
		violations = append(violations, RuleViolation{
			Field:   "guests",
			Message: fmt.Sprintf("guest count exceeds the maximum occupancy of %d", apt.MaxOccupancy),
		})
	}

	if req.GuestID == string(apt.Host) {
		violations = append(violations, RuleViolation{Field: "guest_id", Message: "hosts cannot book their own apartment"})
	}

	if !apt.OpenForBooking {
		violations = append(violations, RuleViolation{Field: "apartment", Message: "apartment is not open for booking"})
	}

	var dr daterange.DateRange
	if rangeValid {
		dr = daterange.DateRange{Start: start, End: end}
		if !IsAvailable(dr, existing, exclude) {
			violations = append(violations, RuleViolation{Field: "date_range", Message: "apartment is already booked for the selected dates"})
		}
	}

	if len(violations) > 0 {
		return Draft{}, &ValidationError{Violations: violations}
	}

	price, err := pricing.Quote(dr, apt.NightlyRate)
	if err != nil {
		return Draft{}, err
	}
	return Draft{Range: dr, Guests: req.Guests, Price: price}, nil
}
