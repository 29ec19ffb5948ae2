package booking

import (
	"context"
	"time"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/dto"
	"flatbook/internal/app/middleware"
	"flatbook/internal/app/outbox"
	"flatbook/internal/app/uow"
	domainbooking "flatbook/internal/domain/booking"
)

const rescheduleBookingKey = "booking.reschedule"

type RescheduleBookingCommand struct {
	BookingID       string
	GuestID         string
	StartDate       time.Time
	EndDate         time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c RescheduleBookingCommand) Key() string { return rescheduleBookingKey }

func (c RescheduleBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RescheduleBookingCommand) ResultPrototype() any { return &RescheduleBookingResult{} }

type RescheduleBookingResult struct {
	BookingID string       `json:"booking_id"`
	Nights    int          `json:"nights"`
	Total     dto.MoneyDTO `json:"total"`
}

// RescheduleBookingHandler re-admits an existing booking under new dates or
// guest count. The booking's own range is excluded from the overlap check so
// an unchanged or shrunk range never conflicts with itself, and the price is
// always requoted at the apartment's current rate.
type RescheduleBookingHandler struct {
	Factory  uow.Factory
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Clock    func() time.Time
	Attempts int
}

func (h *RescheduleBookingHandler) Handle(ctx context.Context, cmd RescheduleBookingCommand) (*RescheduleBookingResult, error) {
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
	id := domainbooking.BookingID(cmd.BookingID)
	current, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.GuestID != cmd.GuestID {
		return nil, domainbooking.ErrNotGuest
	}
	if err := domainbooking.CheckMutable(current, now); err != nil {
		return nil, err
	}

	apt, err := unit.Apartments().ByID(ctx, current.ApartmentID)
	if err != nil {
		return nil, err
	}

	req := domainbooking.AdmissionRequest{
		ApartmentID: apt.ID,
		GuestID:     current.GuestID,
		StartDate:   cmd.StartDate,
		EndDate:     cmd.EndDate,
		Guests:      cmd.Guests,
	}
	updated, err := admit(ctx, unit, apt, req, id, now, h.Attempts, func(draft domainbooking.Draft) (*domainbooking.Booking, error) {
		// Re-fetch per attempt so a retried commit does not stack stale
		// reschedule events on the same aggregate instance.
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := b.Reschedule(draft.Range, draft.Guests, draft.Price, now); err != nil {
			return nil, err
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	pending := updated.PendingEvents()
	updated.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RescheduleBookingResult{
		BookingID: string(updated.ID),
		Nights:    updated.Price.Nights,
		Total:     dto.MapMoney(updated.Price.Total),
	}, nil
}

func (h *RescheduleBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *RescheduleBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RescheduleBookingCommand, *RescheduleBookingResult] = (*RescheduleBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RescheduleBookingCommand)(nil)
