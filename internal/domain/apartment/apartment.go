package apartment

import (
	"context"
	"errors"
	"strings"
	"time"

	"flatbook/internal/domain/shared/events"
	"flatbook/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("apartment: not found")
	ErrTitleRequired    = errors.New("apartment: title is required")
	ErrAddressRequired  = errors.New("apartment: address, city and country are required")
	ErrInvalidRate      = errors.New("apartment: nightly rate must be positive")
	ErrInvalidOccupancy = errors.New("apartment: max occupancy must be at least 1")
	ErrInvalidRooms     = errors.New("apartment: bedrooms and bathrooms must be at least 1")
	ErrNotHost          = errors.New("apartment: only the host may modify the listing")
)

type ApartmentID string
type HostID string

// Apartment is the listing aggregate. The admission engine reads it for
// ownership, occupancy and rate; only host commands mutate it.
type Apartment struct {
	ID           ApartmentID
	Host         HostID
	Title        string
	Description  string
	Address      string
	City         string
	Country      string
	Bedrooms     int
	Bathrooms    int
	MaxOccupancy int
	NightlyRate  money.Money
	// OpenForBooking is the host-controlled availability switch,
	// independent of the booking calendar.
	OpenForBooking bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ApartmentID) (*Apartment, error)
	ListByHost(ctx context.Context, host HostID) ([]*Apartment, error)
	List(ctx context.Context) ([]*Apartment, error)
	Save(ctx context.Context, apt *Apartment) error
}

type CreateParams struct {
	ID           ApartmentID
	Host         HostID
	Title        string
	Description  string
	Address      string
	City         string
	Country      string
	Bedrooms     int
	Bathrooms    int
	MaxOccupancy int
	NightlyRate  money.Money
	Now          time.Time
}

func New(params CreateParams) (*Apartment, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("apartment: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("apartment: host is required")
	}
	if err := validateAttributes(params.Title, params.Address, params.City, params.Country,
		params.Bedrooms, params.Bathrooms, params.MaxOccupancy, params.NightlyRate); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	apt := &Apartment{
		ID:             params.ID,
		Host:           params.Host,
		Title:          strings.TrimSpace(params.Title),
		Description:    strings.TrimSpace(params.Description),
		Address:        strings.TrimSpace(params.Address),
		City:           strings.TrimSpace(params.City),
		Country:        strings.TrimSpace(params.Country),
		Bedrooms:       params.Bedrooms,
		Bathrooms:      params.Bathrooms,
		MaxOccupancy:   params.MaxOccupancy,
		NightlyRate:    params.NightlyRate,
		OpenForBooking: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	apt.Record(Listed{ApartmentID: apt.ID, Host: apt.Host, At: now})
	return apt, nil
}

type UpdateParams struct {
	Title        string
	Description  string
	Address      string
	City         string
	Country      string
	Bedrooms     int
	Bathrooms    int
	MaxOccupancy int
	NightlyRate  money.Money
	Now          time.Time
}

func (a *Apartment) Update(actor HostID, params UpdateParams) error {
	if actor != a.Host {
		return ErrNotHost
	}
	if err := validateAttributes(params.Title, params.Address, params.City, params.Country,
		params.Bedrooms, params.Bathrooms, params.MaxOccupancy, params.NightlyRate); err != nil {
		return err
	}
	a.Title = strings.TrimSpace(params.Title)
	a.Description = strings.TrimSpace(params.Description)
	a.Address = strings.TrimSpace(params.Address)
	a.City = strings.TrimSpace(params.City)
	a.Country = strings.TrimSpace(params.Country)
	a.Bedrooms = params.Bedrooms
	a.Bathrooms = params.Bathrooms
	a.MaxOccupancy = params.MaxOccupancy
	a.NightlyRate = params.NightlyRate
	a.UpdatedAt = params.Now.UTC()
	a.Record(Updated{ApartmentID: a.ID, At: a.UpdatedAt})
	return nil
}

// SetOpenForBooking toggles the host availability switch.
func (a *Apartment) SetOpenForBooking(actor HostID, open bool, now time.Time) error {
	if actor != a.Host {
		return ErrNotHost
	}
	if a.OpenForBooking == open {
		return nil
	}
	a.OpenForBooking = open
	a.UpdatedAt = now.UTC()
	a.Record(BookingAvailabilityChanged{ApartmentID: a.ID, Open: open, At: a.UpdatedAt})
	return nil
}

func validateAttributes(title, address, city, country string, bedrooms, bathrooms, occupancy int, rate money.Money) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(address) == "" || strings.TrimSpace(city) == "" || strings.TrimSpace(country) == "" {
		return ErrAddressRequired
	}
	if bedrooms < 1 || bathrooms < 1 {
		return ErrInvalidRooms
	}
	if occupancy < 1 {
		return ErrInvalidOccupancy
	}
	if rate.Amount <= 0 || rate.Currency == "" {
		return ErrInvalidRate
	}
	return nil
}
