package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/dto"
	"flatbook/internal/app/middleware"
	"flatbook/internal/app/outbox"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	CommandID       string
	ApartmentID     string
	GuestID         string
	StartDate       time.Time
	EndDate         time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID string       `json:"booking_id"`
	Nights    int          `json:"nights"`
	Total     dto.MoneyDTO `json:"total"`
}

// RequestBookingHandler admits new bookings. It never trusts a caller
// supplied total; the quote is recomputed from the apartment's rate.
type RequestBookingHandler struct {
	Factory  uow.Factory
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Clock    func() time.Time
	Attempts int
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory)
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

	now := h.now()
	apt, err := unit.Apartments().ByID(ctx, domainapartment.ApartmentID(cmd.ApartmentID))
	if err != nil {
		return nil, err
	}

	req := domainbooking.AdmissionRequest{
		ApartmentID: apt.ID,
		GuestID:     cmd.GuestID,
		StartDate:   cmd.StartDate,
		EndDate:     cmd.EndDate,
		Guests:      cmd.Guests,
	}
	admitted, err := admit(ctx, unit, apt, req, "", now, h.Attempts, func(draft domainbooking.Draft) (*domainbooking.Booking, error) {
		id := cmd.CommandID
		if id == "" {
			id = uuid.NewString()
		}
		return domainbooking.NewBooking(domainbooking.CreateParams{
			ID:          domainbooking.BookingID(id),
			ApartmentID: apt.ID,
			GuestID:     cmd.GuestID,
			Range:       draft.Range,
			Guests:      draft.Guests,
			Price:       draft.Price,
			CreatedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	pending := admitted.PendingEvents()
	admitted.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestBookingResult{
		BookingID: string(admitted.ID),
		Nights:    admitted.Price.Nights,
		Total:     dto.MapMoney(admitted.Price.Total),
	}, nil
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
