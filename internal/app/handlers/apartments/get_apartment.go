package apartments

import (
	"context"
	"sort"

	"flatbook/internal/app/dto"
	"flatbook/internal/app/queries"
	"flatbook/internal/app/uow"
	domainapartment "flatbook/internal/domain/apartment"
)

const getApartmentKey = "apartments.get"

type GetApartmentQuery struct {
	ApartmentID string
}

func (q GetApartmentQuery) Key() string { return getApartmentKey }

// GetApartmentHandler returns a listing together with its booked calendar
// slices so clients can pick a free range before submitting a request.
type GetApartmentHandler struct {
	Factory uow.Factory
}

func (h *GetApartmentHandler) Handle(ctx context.Context, q GetApartmentQuery) (*dto.ApartmentDetail, error) {
	unit, ctx, managed, err := beginOrReuse(ctx, h.Factory, true)
	if err != nil {
		return nil, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	apt, err := unit.Apartments().ByID(ctx, domainapartment.ApartmentID(q.ApartmentID))
	if err != nil {
		return nil, err
	}
	active, err := unit.Bookings().ListActiveByApartment(ctx, apt.ID)
	if err != nil {
		return nil, err
	}

	ranges := make([]dto.BookedRange, 0, len(active))
	for _, b := range active {
		ranges = append(ranges, dto.BookedRange{StartDate: b.Range.Start, EndDate: b.Range.End})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].StartDate.Before(ranges[j].StartDate) })

	return &dto.ApartmentDetail{
		Apartment:    dto.MapApartment(apt),
		BookedRanges: ranges,
	}, nil
}

var _ queries.Handler[GetApartmentQuery, *dto.ApartmentDetail] = (*GetApartmentHandler)(nil)
