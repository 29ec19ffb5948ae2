package memory

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
	"flatbook/internal/domain/shared/events"
)

// ApartmentRepository is an in-memory implementation suitable for dev and
// tests.
type ApartmentRepository struct {
	mu    sync.RWMutex
	items map[domainapartment.ApartmentID]domainapartment.Apartment
}

func NewApartmentRepository() *ApartmentRepository {
	return &ApartmentRepository{
		items: make(map[domainapartment.ApartmentID]domainapartment.Apartment),
	}
}

func (r *ApartmentRepository) ByID(ctx context.Context, id domainapartment.ApartmentID) (*domainapartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	apt, ok := r.items[id]
	if !ok {
		return nil, domainapartment.ErrNotFound
	}
	return cloneApartment(apt), nil
}

func (r *ApartmentRepository) ListByHost(ctx context.Context, host domainapartment.HostID) ([]*domainapartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainapartment.Apartment, 0)
	for _, apt := range r.items {
		if apt.Host == host {
			out = append(out, cloneApartment(apt))
		}
	}
	sortApartments(out)
	return out, nil
}

func (r *ApartmentRepository) List(ctx context.Context) ([]*domainapartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainapartment.Apartment, 0, len(r.items))
	for _, apt := range r.items {
		out = append(out, cloneApartment(apt))
	}
	sortApartments(out)
	return out, nil
}

func (r *ApartmentRepository) Save(ctx context.Context, apt *domainapartment.Apartment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *apt
	stored.EventRecorder = events.EventRecorder{}
	r.items[apt.ID] = stored
	return nil
}

func sortApartments(items []*domainapartment.Apartment) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func cloneApartment(apt domainapartment.Apartment) *domainapartment.Apartment {
	copied := apt
	copied.EventRecorder = events.EventRecorder{}
	return &copied
}

// bookingStripes bounds the number of per-apartment commit locks.
const bookingStripes = 64

// BookingRepository keeps bookings in memory. Commit serializes per
// apartment through striped locks so the overlap check and insert are one
// atomic step, which is what makes concurrent admissions of the same range
// admit exactly one booking.
type BookingRepository struct {
	mu      sync.RWMutex
	items   map[domainbooking.BookingID]domainbooking.Booking
	stripes [bookingStripes]sync.Mutex
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]domainbooking.Booking),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListActiveByApartment(ctx context.Context, id domainapartment.ApartmentID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(id, true), nil
}

func (r *BookingRepository) ListByApartment(ctx context.Context, id domainapartment.ApartmentID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(id, false), nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *BookingRepository) Commit(ctx context.Context, b *domainbooking.Booking) error {
	stripe := &r.stripes[stripeFor(b.ApartmentID)]
	stripe.Lock()
	defer stripe.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ApartmentID != b.ApartmentID || existing.ID == b.ID {
			continue
		}
		if existing.State != domainbooking.StateActive {
			continue
		}
		if existing.Range.Overlaps(b.Range) {
			return domainbooking.ErrRangeConflict
		}
	}
	stored := *b
	stored.EventRecorder = events.EventRecorder{}
	stored.Version = b.Version + 1
	r.items[b.ID] = stored
	b.Version = stored.Version
	return nil
}

func (r *BookingRepository) UpdateState(ctx context.Context, id domainbooking.BookingID, state domainbooking.BookingState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return domainbooking.ErrNotFound
	}
	b.State = state
	b.Version++
	r.items[id] = b
	return nil
}

func (r *BookingRepository) listLocked(id domainapartment.ApartmentID, activeOnly bool) []*domainbooking.Booking {
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.ApartmentID != id {
			continue
		}
		if activeOnly && b.State != domainbooking.StateActive {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sortBookings(out)
	return out
}

func sortBookings(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Range.Start.Equal(items[j].Range.Start) {
			return items[i].ID < items[j].ID
		}
		return items[i].Range.Start.Before(items[j].Range.Start)
	})
}

func cloneBooking(b domainbooking.Booking) *domainbooking.Booking {
	copied := b
	copied.EventRecorder = events.EventRecorder{}
	return &copied
}

func stripeFor(id domainapartment.ApartmentID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % bookingStripes)
}

var _ domainapartment.Repository = (*ApartmentRepository)(nil)
var _ domainbooking.Repository = (*BookingRepository)(nil)
