package apartments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/outbox"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/shared/money"
)

const createApartmentKey = "apartments.create"

type CreateApartmentCommand struct {
	CommandID    string
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

func (c CreateApartmentCommand) Key() string { return createApartmentKey }

type CreateApartmentResult struct {
	ApartmentID string `json:"apartment_id"`
}

type CreateApartmentHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *CreateApartmentHandler) Handle(ctx context.Context, cmd CreateApartmentCommand) (*CreateApartmentResult, error) {
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

	rate, err := money.New(cmd.RateAmount, cmd.RateCurrency)
	if err != nil {
		return nil, err
	}
	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:           domainapartment.ApartmentID(id),
		Host:         domainapartment.HostID(cmd.HostID),
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
	return &CreateApartmentResult{ApartmentID: string(apt.ID)}, nil
}

func (h *CreateApartmentHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateApartmentHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateApartmentCommand, *CreateApartmentResult] = (*CreateApartmentHandler)(nil)
