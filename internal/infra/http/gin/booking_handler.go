package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"holidaze/internal/app/commands"
	bookingapp "holidaze/internal/app/handlers/booking"
	"holidaze/internal/app/session"
	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

type BookingHandler struct {
	Commands commands.Bus
}

type createBookingRequest struct {
	VenueID  venues.VenueID `json:"venueId"`
	DateFrom daterange.Day  `json:"dateFrom"`
	DateTo   daterange.Day  `json:"dateTo"`
	Guests   int            `json:"guests"`
}

type createBookingResponse struct {
	Booking booking.Confirmation `json:"booking"`
	Message string               `json:"message"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, daterange.ErrInvalidDay) {
			respondBookingError(c, booking.NewError(booking.KindInvalidDateRange, "", err))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.VenueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venueId is required"})
		return
	}
	cmd := bookingapp.SubmitBookingCommand{
		Session: session.FromBearer(c.GetHeader("Authorization")),
		Request: booking.Request{
			VenueID:  req.VenueID,
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
			Guests:   req.Guests,
		},
	}
	conf, err := commands.Dispatch[bookingapp.SubmitBookingCommand, booking.Confirmation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createBookingResponse{Booking: conf, Message: "Booking confirmed"})
}

var _ BookingHTTP = BookingHandler{}
