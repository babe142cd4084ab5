package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

func kindStatus(kind booking.Kind) int {
	switch kind {
	case booking.KindUnauthenticated:
		return http.StatusUnauthorized
	case booking.KindInvalidDateRange, booking.KindInvalidGuestCount:
		return http.StatusUnprocessableEntity
	case booking.KindDateRangeUnavailable:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// respondBookingError writes a booking failure as {error, kind}.
func respondBookingError(c *gin.Context, err error) {
	kind := booking.KindOf(err)
	c.JSON(kindStatus(kind), gin.H{"error": booking.MessageOf(err), "kind": kind})
}

// respondQueryError maps read-side failures.
func respondQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, venues.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
	case errors.Is(err, daterange.ErrInvalidDay), errors.Is(err, daterange.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "venue service unavailable"})
	}
}
