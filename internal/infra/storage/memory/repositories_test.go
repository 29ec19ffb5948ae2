package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
	"flatbook/internal/infra/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func newBooking(t *testing.T, id string, apartmentID string, start, end int) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.New(day(start), day(end))
	require.NoError(t, err)
	price, err := pricing.Quote(dr, money.Must(10000, "EUR"))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(id),
		ApartmentID: domainapartment.ApartmentID(apartmentID),
		GuestID:     "guest-" + id,
		Range:       dr,
		Guests:      2,
		Price:       price,
		CreatedAt:   day(1),
	})
	require.NoError(t, err)
	return b
}

func TestCommitRejectsOverlap(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Commit(ctx, newBooking(t, "b-1", "apt-1", 10, 14)))

	err := repo.Commit(ctx, newBooking(t, "b-2", "apt-1", 12, 16))
	assert.ErrorIs(t, err, domainbooking.ErrRangeConflict)

	// same dates on another apartment are unrelated
	require.NoError(t, repo.Commit(ctx, newBooking(t, "b-3", "apt-2", 12, 16)))
}

func TestCommitAllowsAdjacentAndSelfUpdate(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Commit(ctx, newBooking(t, "b-1", "apt-1", 10, 14)))
	require.NoError(t, repo.Commit(ctx, newBooking(t, "b-2", "apt-1", 14, 18)))

	// recommitting b-1 with its own range is not a conflict with itself
	b, err := repo.ByID(ctx, "b-1")
	require.NoError(t, err)
	require.NoError(t, repo.Commit(ctx, b))
}

func TestCommitConcurrentSameRange(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Commit(ctx, newBooking(t, fmt.Sprintf("b-%d", i), "apt-1", 10, 14))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domainbooking.ErrRangeConflict)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestUpdateStateAndActiveListing(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Commit(ctx, newBooking(t, "b-1", "apt-1", 10, 14)))
	require.NoError(t, repo.UpdateState(ctx, "b-1", domainbooking.StateCancelled))

	active, err := repo.ListActiveByApartment(ctx, "apt-1")
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.ListByApartment(ctx, "apt-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domainbooking.StateCancelled, all[0].State)

	// cancelled booking no longer blocks the range
	require.NoError(t, repo.Commit(ctx, newBooking(t, "b-2", "apt-1", 10, 14)))
}

func TestUpdateStateMissingBooking(t *testing.T) {
	repo := memory.NewBookingRepository()
	err := repo.UpdateState(context.Background(), "nope", domainbooking.StateCancelled)
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestRepositoriesReturnCopies(t *testing.T) {
	ctx := context.Background()
	apartments := memory.NewApartmentRepository()
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:           "apt-1",
		Host:         "host-1",
		Title:        "Original title",
		Address:      "Main street 1",
		City:         "Amsterdam",
		Country:      "Netherlands",
		Bedrooms:     1,
		Bathrooms:    1,
		MaxOccupancy: 2,
		NightlyRate:  money.Must(10000, "EUR"),
		Now:          day(1),
	})
	require.NoError(t, err)
	require.NoError(t, apartments.Save(ctx, apt))

	loaded, err := apartments.ByID(ctx, "apt-1")
	require.NoError(t, err)
	loaded.Title = "Mutated"

	again, err := apartments.ByID(ctx, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "Original title", again.Title)
}

func TestListByGuestSortedByStart(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	b1 := newBooking(t, "b-1", "apt-1", 20, 22)
	b1.GuestID = "guest-x"
	b2 := newBooking(t, "b-2", "apt-2", 10, 12)
	b2.GuestID = "guest-x"
	require.NoError(t, repo.Commit(ctx, b1))
	require.NoError(t, repo.Commit(ctx, b2))

	items, err := repo.ListByGuest(ctx, "guest-x")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domainbooking.BookingID("b-2"), items[0].ID)
	assert.Equal(t, domainbooking.BookingID("b-1"), items[1].ID)
}
