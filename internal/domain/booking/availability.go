package booking

import "flatbook/internal/domain/shared/daterange"

// IsAvailable reports whether candidate is free of overlaps with the
// apartment's Active bookings. exclude skips the booking being edited so a
// reschedule never collides with itself. Adjacent ranges (checkout day ==
// check-in day) do not conflict.
//
// A linear scan is deliberate: per-apartment booking counts are small. An
// interval tree keyed by apartment would be the upgrade path without
// changing this contract.
func IsAvailable(candidate daterange.DateRange, existing []*Booking, exclude BookingID) bool {
	for _, b := range existing {
		if b.ID == exclude {
			continue
		}
		if b.State != StateActive {
			continue
		}
		if b.Range.Overlaps(candidate) {
			return false
		}
	}
	return true
}
