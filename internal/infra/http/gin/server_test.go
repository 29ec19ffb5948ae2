package ginserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatbook/internal/app/commands"
	apartmentsapp "flatbook/internal/app/handlers/apartments"
	bookingapp "flatbook/internal/app/handlers/booking"
	meapp "flatbook/internal/app/handlers/me"
	"flatbook/internal/app/middleware"
	"flatbook/internal/app/queries"
	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/shared/money"
	"flatbook/internal/infra/config"
	ginserver "flatbook/internal/infra/http/gin"
	"flatbook/internal/infra/obs"
	"flatbook/internal/infra/storage/memory"
)

type testServer struct {
	http       http.Handler
	apartments *memory.ApartmentRepository
	now        time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		apartments: memory.NewApartmentRepository(),
		now:        time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	bookings := memory.NewBookingRepository()
	factory := memory.Factory{ApartmentRepo: ts.apartments, BookingRepo: bookings}
	sink := memory.NewOutboxStore()
	box := memory.NewOutbox(sink)
	clock := func() time.Time { return ts.now }

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{Factory: factory, Outbox: box, Clock: clock})
	commands.RegisterHandler(commandBus, bookingapp.RescheduleBookingCommand{}.Key(), &bookingapp.RescheduleBookingHandler{Factory: factory, Outbox: box, Clock: clock})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{Factory: factory, Outbox: box, Clock: clock})
	commands.RegisterHandler(commandBus, apartmentsapp.CreateApartmentCommand{}.Key(), &apartmentsapp.CreateApartmentHandler{Factory: factory, Outbox: box, Clock: clock})
	commands.RegisterHandler(commandBus, apartmentsapp.UpdateApartmentCommand{}.Key(), &apartmentsapp.UpdateApartmentHandler{Factory: factory, Outbox: box, Clock: clock})
	commands.RegisterHandler(commandBus, apartmentsapp.SetOpenForBookingCommand{}.Key(), &apartmentsapp.SetOpenForBookingHandler{Factory: factory, Outbox: box, Clock: clock})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{Factory: factory})
	queries.RegisterHandler(queryBus, meapp.ListGuestBookingsQuery{}.Key(), &meapp.ListGuestBookingsHandler{Factory: factory})
	queries.RegisterHandler(queryBus, meapp.ListHostBookingsQuery{}.Key(), &meapp.ListHostBookingsHandler{Factory: factory})
	queries.RegisterHandler(queryBus, apartmentsapp.ListApartmentsQuery{}.Key(), &apartmentsapp.ListApartmentsHandler{Factory: factory})
	queries.RegisterHandler(queryBus, apartmentsapp.ListHostApartmentsQuery{}.Key(), &apartmentsapp.ListHostApartmentsHandler{Factory: factory})
	queries.RegisterHandler(queryBus, apartmentsapp.GetApartmentQuery{}.Key(), &apartmentsapp.GetApartmentHandler{Factory: factory})

	commandBusMW := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(memory.NewIdempotencyStore(0), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusMW := middleware.ChainQueries(queryBus)

	authMW := ginserver.HeaderAuthMiddleware{}
	server := ginserver.NewServer(
		config.Config{Env: "test", HTTPAddr: ":0"},
		obs.Middleware{},
		obs.HealthHandlers{},
		ginserver.Handlers{
			Booking:        ginserver.BookingHandler{Commands: commandBusMW, Queries: queryBusMW},
			Apartment:      ginserver.ApartmentHandler{Queries: queryBusMW},
			Host:           ginserver.HostHandler{Commands: commandBusMW, Queries: queryBusMW},
			Me:             ginserver.MeHandler{Queries: queryBusMW},
			AuthMiddleware: authMW.Handle,
		},
	)
	ts.http = server.Handler
	return ts
}

func (ts *testServer) seedApartment(t *testing.T, id, host string) {
	t.Helper()
	apt, err := domainapartment.New(domainapartment.CreateParams{
		ID:           domainapartment.ApartmentID(id),
		Host:         domainapartment.HostID(host),
		Title:        "Canal view apartment",
		Address:      "Kade 14",
		City:         "Amsterdam",
		Country:      "Netherlands",
		Bedrooms:     2,
		Bathrooms:    1,
		MaxOccupancy: 4,
		NightlyRate:  money.Must(10000, "EUR"),
		Now:          ts.now,
	})
	require.NoError(t, err)
	apt.ClearEvents()
	require.NoError(t, ts.apartments.Save(context.Background(), apt))
}

func (ts *testServer) do(t *testing.T, method, path, userID string, roles string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}
	rec := httptest.NewRecorder()
	ts.http.ServeHTTP(rec, req)
	return rec
}

func bookingBody(apartmentID string, start, end string, guests int) map[string]any {
	return map[string]any{
		"apartment_id": apartmentID,
		"start_date":   start,
		"end_date":     end,
		"guests":       guests,
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		BookingID string `json:"booking_id"`
		Nights    int    `json:"nights"`
		Total     struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.BookingID)
	assert.Equal(t, 4, res.Nights)
	assert.Equal(t, int64(40000), res.Total.Amount)
	assert.Equal(t, "EUR", res.Total.Currency)
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "", "",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingValidationPayload(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-08-20T00:00:00Z", "2026-08-18T00:00:00Z", 9))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res struct {
		Error      string `json:"error"`
		Violations []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "validation failed", res.Error)
	assert.GreaterOrEqual(t, len(res.Violations), 3)
}

func TestCreateBookingOverlapReturnsBadRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-2", "guest",
		bookingBody("apt-1", "2026-09-12T00:00:00Z", "2026-09-16T00:00:00Z", 2))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotencyKeyReplaysBooking(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")
	body := bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2)

	send := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "guest-1")
		req.Header.Set("X-User-Roles", "guest")
		req.Header.Set("Idempotency-Key", "retry-1")
		rec := httptest.NewRecorder()
		ts.http.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code)
	second := send()
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b struct {
		BookingID string `json:"booking_id"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.BookingID, b.BookingID)
}

func TestCancelInsideWindowForbidden(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	require.Equal(t, http.StatusCreated, rec.Code)
	var res struct {
		BookingID string `json:"booking_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	ts.now = time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/cancel", res.BookingID), "guest-1", "guest", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApartmentDetailListsBookedRanges(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/apartments/apt-1", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Apartment struct {
			ID string `json:"id"`
		} `json:"apartment"`
		BookedRanges []struct {
			StartDate time.Time `json:"start_date"`
			EndDate   time.Time `json:"end_date"`
		} `json:"booked_ranges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "apt-1", res.Apartment.ID)
	require.Len(t, res.BookedRanges, 1)
}

func TestGetBookingHiddenFromStrangers(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	require.Equal(t, http.StatusCreated, rec.Code)
	var res struct {
		BookingID string `json:"booking_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	path := "/api/v1/bookings/" + res.BookingID

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, path, "guest-1", "guest", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, path, "host-1", "host", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, "guest-2", "guest", nil).Code)
}

func TestHostRoutesRequireHostRole(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/host/apartments", "guest-1", "guest", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/host/apartments", "host-1", "host", map[string]any{
		"title":         "New place",
		"address":       "Street 2",
		"city":          "Lisbon",
		"country":       "Portugal",
		"bedrooms":      1,
		"bathrooms":     1,
		"max_occupancy": 2,
		"rate_amount":   8000,
		"rate_currency": "EUR",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCloseApartmentBlocksAdmission(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/host/apartments/apt-1/close", "host-1", "host", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeBookings(t *testing.T) {
	ts := newTestServer(t)
	ts.seedApartment(t, "apt-1", "host-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/bookings", "guest-1", "guest",
		bookingBody("apt-1", "2026-09-10T00:00:00Z", "2026-09-14T00:00:00Z", 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/me/bookings", "guest-1", "guest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/host/bookings", "host-1", "host", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 1)
}
