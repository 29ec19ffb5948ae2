package apartment

import "time"

type Listed struct {
	ApartmentID ApartmentID
	Host        HostID
	At          time.Time
}

func (e Listed) EventName() string     { return "apartment.listed" }
func (e Listed) AggregateID() string   { return string(e.ApartmentID) }
func (e Listed) OccurredAt() time.Time { return e.At }

type Updated struct {
	ApartmentID ApartmentID
	At          time.Time
}

func (e Updated) EventName() string     { return "apartment.updated" }
func (e Updated) AggregateID() string   { return string(e.ApartmentID) }
func (e Updated) OccurredAt() time.Time { return e.At }

type BookingAvailabilityChanged struct {
	ApartmentID ApartmentID
	Open        bool
	At          time.Time
}

func (e BookingAvailabilityChanged) EventName() string     { return "apartment.booking_availability_changed" }
func (e BookingAvailabilityChanged) AggregateID() string   { return string(e.ApartmentID) }
func (e BookingAvailabilityChanged) OccurredAt() time.Time { return e.At }
