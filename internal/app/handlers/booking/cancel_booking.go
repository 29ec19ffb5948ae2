package booking

import (
	"context"
	"time"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/middleware"
	"flatbook/internal/app/outbox"
	"flatbook/internal/app/uow"
	domainbooking "flatbook/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID       string
	GuestID         string
	IdempotencyKeyV string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CancelBookingCommand) ResultPrototype() any { return &CancelBookingResult{} }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	State     string `json:"state"`
}

type CancelBookingHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.GuestID != cmd.GuestID {
		return nil, domainbooking.ErrNotGuest
	}
	if err := domainbooking.CheckMutable(b, now); err != nil {
		return nil, err
	}
	if err := b.Cancel(now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().UpdateState(ctx, b.ID, b.State); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CancelBookingResult{BookingID: string(b.ID), State: string(b.State)}, nil
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CancelBookingCommand)(nil)
