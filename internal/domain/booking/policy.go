package booking

import "time"

// MutationWindow is how far before check-in a booking stops accepting
// cancellations and edits.
const MutationWindow = 48 * time.Hour

const (
	ReasonWindowExpired    = "cancellation window expired"
	ReasonAlreadyCancelled = "booking already cancelled"
)

// PolicyViolationError rejects a cancel/reschedule attempted inside the
// protected window or on a terminal booking.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return "booking: " + e.Reason
}

// CheckMutable gates both cancel and reschedule: the stay must start more
// than MutationWindow after now, measured against wall-clock time at the
// moment of the request. Cancelled is terminal.
func CheckMutable(b *Booking, now time.Time) error {
	if b.State == StateCancelled {
		return &PolicyViolationError{Reason: ReasonAlreadyCancelled}
	}
	if b.Range.Start.Sub(now.UTC()) <= MutationWindow {
		return &PolicyViolationError{Reason: ReasonWindowExpired}
	}
	return nil
}
