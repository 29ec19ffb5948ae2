package dto

import (
	"time"

	domainbooking "flatbook/internal/domain/booking"
	"flatbook/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type BookingView struct {
	ID          string     `json:"id"`
	ApartmentID string     `json:"apartment_id"`
	GuestID     string     `json:"guest_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Nights      int        `json:"nights"`
	Guests      int        `json:"guests"`
	Total       MoneyDTO   `json:"total"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:          string(b.ID),
		ApartmentID: string(b.ApartmentID),
		GuestID:     b.GuestID,
		StartDate:   b.Range.Start,
		EndDate:     b.Range.End,
		Nights:      b.Price.Nights,
		Guests:      b.Guests,
		Total:       MapMoney(b.Price.Total),
		State:       string(b.State),
		CreatedAt:   b.CreatedAt,
	}
	if !b.UpdatedAt.IsZero() {
		updated := b.UpdatedAt
		view.UpdatedAt = &updated
	}
	return view
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]BookingView, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}
