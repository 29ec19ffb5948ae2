package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
)

// writeError translates domain failures into transport answers. Validation
// failures keep their full violation list so clients can show every problem
// at once.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var vErr *domainbooking.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "validation failed",
			"violations": vErr.Violations,
		})
		return
	}
	var pErr *domainbooking.PolicyViolationError
	if errors.As(err, &pErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": pErr.Reason})
		return
	}
	switch {
	case errors.Is(err, domainbooking.ErrRangeConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "date range conflicts with an existing booking"})
	case errors.Is(err, domainbooking.ErrNotGuest), errors.Is(err, domainapartment.ErrNotHost):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	case errors.Is(err, domainbooking.ErrNotFound), errors.Is(err, domainapartment.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainbooking.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, domainapartment.ErrTitleRequired),
		errors.Is(err, domainapartment.ErrAddressRequired),
		errors.Is(err, domainapartment.ErrInvalidRate),
		errors.Is(err, domainapartment.ErrInvalidOccupancy),
		errors.Is(err, domainapartment.ErrInvalidRooms):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err, "path", c.FullPath())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
