package dto

import (
	"time"

	domainapartment "flatbook/internal/domain/apartment"
)

type ApartmentView struct {
	ID             string    `json:"id"`
	Host           string    `json:"host"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	MaxOccupancy   int       `json:"max_occupancy"`
	NightlyRate    MoneyDTO  `json:"nightly_rate"`
	OpenForBooking bool      `json:"open_for_booking"`
	CreatedAt      time.Time `json:"created_at"`
}

type ApartmentCollection struct {
	Items []ApartmentView `json:"items"`
}

// BookedRange is a slice of an apartment's calendar already taken by an
// Active booking; booking identity is deliberately not exposed.
type BookedRange struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type ApartmentDetail struct {
	Apartment    ApartmentView `json:"apartment"`
	BookedRanges []BookedRange `json:"booked_ranges"`
}

func MapApartment(a *domainapartment.Apartment) ApartmentView {
	return ApartmentView{
		ID:             string(a.ID),
		Host:           string(a.Host),
		Title:          a.Title,
		Description:    a.Description,
		Address:        a.Address,
		City:           a.City,
		Country:        a.Country,
		Bedrooms:       a.Bedrooms,
		Bathrooms:      a.Bathrooms,
		MaxOccupancy:   a.MaxOccupancy,
		NightlyRate:    MapMoney(a.NightlyRate),
		OpenForBooking: a.OpenForBooking,
		CreatedAt:      a.CreatedAt,
	}
}

func MapApartments(items []*domainapartment.Apartment) ApartmentCollection {
	out := ApartmentCollection{Items: make([]ApartmentView, 0, len(items))}
	for _, a := range items {
		out.Items = append(out.Items, MapApartment(a))
	}
	return out
}
