package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"flatbook/internal/app/dto"
	apartmentsapp "flatbook/internal/app/handlers/apartments"
	"flatbook/internal/app/queries"
)

// ApartmentHandler serves the public catalog; no principal required.
type ApartmentHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ApartmentHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[apartmentsapp.ListApartmentsQuery, dto.ApartmentCollection](c.Request.Context(), h.Queries, apartmentsapp.ListApartmentsQuery{})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ApartmentHandler) Detail(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	query := apartmentsapp.GetApartmentQuery{ApartmentID: c.Param("id")}
	result, err := queries.Ask[apartmentsapp.GetApartmentQuery, *dto.ApartmentDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ApartmentHTTP = ApartmentHandler{}
