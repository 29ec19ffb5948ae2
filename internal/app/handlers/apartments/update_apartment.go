package apartments

import (
	"context"
	"time"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/outbox"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/shared/money"
)

const (
	updateApartmentKey = "apartments.update"
	setOpenKey         = "apartments.set_open"
)

type UpdateApartmentCommand struct {
	ApartmentID  string
	HostID       string
	Title        string
	Description  string
	Address      string
	City         string
	Country      string
	Bedrooms     int
	Bathrooms    int
	MaxOccupancy int
	RateAmount   int64
	RateCurrency string
}

func (c UpdateApartmentCommand) Key() string { return updateApartmentKey }

type UpdateApartmentResult struct {
	ApartmentID string `json:"apartment_id"`
}

// UpdateApartmentHandler edits listing attributes. Rate changes apply to
// future quotes only; already admitted bookings keep the price they were
// admitted at.
type UpdateApartmentHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *UpdateApartmentHandler) Handle(ctx context.Context, cmd UpdateApartmentCommand) (*UpdateApartmentResult, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory, false)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	apt, err := unit.Apartments().ByID(ctx, domainapartment.ApartmentID(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}
	rate, err := money.New(cmd.RateAmount, cmd.RateCurrency)
	if err != nil {
		return nil, err
	}
	err = apt.Update(domainapartment.HostID(cmd.HostID), domainapartment.UpdateParams{
		Title:        cmd.Title,
		Description:  cmd.Description,
		Address:      cmd.Address,
		City:         cmd.City,
		Country:      cmd.Country,
		Bedrooms:     cmd.Bedrooms,
		Bathrooms:    cmd.Bathrooms,
		MaxOccupancy: cmd.MaxOccupancy,
		NightlyRate:  rate,
		Now:          h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Apartments().Save(ctx, apt); err != nil {
		return nil, err
	}

	pending := apt.PendingEvents()
	apt.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &UpdateApartmentResult{ApartmentID: string(apt.ID)}, nil
}

func (h *UpdateApartmentHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *UpdateApartmentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

type SetOpenForBookingCommand struct {
	ApartmentID string
	HostID      string
	Open        bool
}

func (c SetOpenForBookingCommand) Key() string { return setOpenKey }

type SetOpenForBookingResult struct {
	ApartmentID string `json:"apartment_id"`
	Open        bool   `json:"open_for_booking"`
}

// SetOpenForBookingHandler flips the host availability switch. Closing a
// listing blocks new admissions but leaves existing bookings untouched.
type SetOpenForBookingHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *SetOpenForBookingHandler) Handle(ctx context.Context, cmd SetOpenForBookingCommand) (*SetOpenForBookingResult, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory, false)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	apt, err := unit.Apartments().ByID(ctx, domainapartment.ApartmentID(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}
	if err := apt.SetOpenForBooking(domainapartment.HostID(cmd.HostID), cmd.Open, h.now()); err != nil {
		return nil, err
	}
	if err := unit.Apartments().Save(ctx, apt); err != nil {
		return nil, err
	}

	pending := apt.PendingEvents()
	apt.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &SetOpenForBookingResult{ApartmentID: string(apt.ID), Open: apt.OpenForBooking}, nil
}

func (h *SetOpenForBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *SetOpenForBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UpdateApartmentCommand, *UpdateApartmentResult] = (*UpdateApartmentHandler)(nil)
var _ commands.Handler[SetOpenForBookingCommand, *SetOpenForBookingResult] = (*SetOpenForBookingHandler)(nil)
