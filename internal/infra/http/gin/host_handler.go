package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"flatbook/internal/app/commands"
	"flatbook/internal/app/dto"
	apartmentsapp "flatbook/internal/app/handlers/apartments"
	meapp "flatbook/internal/app/handlers/me"
	"flatbook/internal/app/queries"
)

const roleHost = "host"

type HostHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type apartmentRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Bedrooms     int    `json:"bedrooms"`
	Bathrooms    int    `json:"bathrooms"`
	MaxOccupancy int    `json:"max_occupancy"`
	RateAmount   int64  `json:"rate_amount"`
	RateCurrency string `json:"rate_currency"`
}

func (h HostHandler) ListApartments(c *gin.Context) {
	user, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := apartmentsapp.ListHostApartmentsQuery{HostID: user.ID}
	result, err := queries.Ask[apartmentsapp.ListHostApartmentsQuery, dto.ApartmentCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostHandler) CreateApartment(c *gin.Context) {
	user, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req apartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := apartmentsapp.CreateApartmentCommand{
		CommandID:    generateCommandID(),
		HostID:       user.ID,
		Title:        req.Title,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		MaxOccupancy: req.MaxOccupancy,
		RateAmount:   req.RateAmount,
		RateCurrency: req.RateCurrency,
	}
	result, err := commands.Dispatch[apartmentsapp.CreateApartmentCommand, *apartmentsapp.CreateApartmentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostHandler) UpdateApartment(c *gin.Context) {
	user, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req apartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := apartmentsapp.UpdateApartmentCommand{
		ApartmentID:  c.Param("id"),
		HostID:       user.ID,
		Title:        req.Title,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		MaxOccupancy: req.MaxOccupancy,
		RateAmount:   req.RateAmount,
		RateCurrency: req.RateCurrency,
	}
	result, err := commands.Dispatch[apartmentsapp.UpdateApartmentCommand, *apartmentsapp.UpdateApartmentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostHandler) OpenApartment(c *gin.Context) {
	h.setOpen(c, true)
}

func (h HostHandler) CloseApartment(c *gin.Context) {
	h.setOpen(c, false)
}

func (h HostHandler) setOpen(c *gin.Context, open bool) {
	user, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := apartmentsapp.SetOpenForBookingCommand{
		ApartmentID: c.Param("id"),
		HostID:      user.ID,
		Open:        open,
	}
	result, err := commands.Dispatch[apartmentsapp.SetOpenForBookingCommand, *apartmentsapp.SetOpenForBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostHandler) ListBookings(c *gin.Context) {
	user, ok := requireRole(c, roleHost)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := meapp.ListHostBookingsQuery{HostID: user.ID}
	result, err := queries.Ask[meapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostHTTP = HostHandler{}
