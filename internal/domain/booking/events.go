package booking

import (
	"time"

	"flatbook/internal/domain/apartment"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
)

type Admitted struct {
	BookingID   BookingID
	ApartmentID apartment.ApartmentID
	GuestID     string
	Range       daterange.DateRange
	Guests      int
	Total       money.Money
	At          time.Time
}

func (e Admitted) EventName() string     { return "booking.admitted" }
func (e Admitted) AggregateID() string   { return string(e.BookingID) }
func (e Admitted) OccurredAt() time.Time { return e.At }

type Rescheduled struct {
	BookingID   BookingID
	ApartmentID apartment.ApartmentID
	Range       daterange.DateRange
	Total       money.Money
	At          time.Time
}

func (e Rescheduled) EventName() string     { return "booking.rescheduled" }
func (e Rescheduled) AggregateID() string   { return string(e.BookingID) }
func (e Rescheduled) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID   BookingID
	ApartmentID apartment.ApartmentID
	At          time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.BookingID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }
