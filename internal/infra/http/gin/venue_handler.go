package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"holidaze/internal/app/dto"
	venuesapp "holidaze/internal/app/handlers/venues"
	"holidaze/internal/app/queries"
	"holidaze/internal/domain/shared/daterange"
	domainvenues "holidaze/internal/domain/venues"
)

type VenueHandler struct {
	Queries queries.Bus
}

func (h VenueHandler) Get(c *gin.Context) {
	q := venuesapp.GetVenueQuery{VenueID: venueID(c)}
	result, err := queries.Ask[venuesapp.GetVenueQuery, domainvenues.Venue](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VenueHandler) Bookings(c *gin.Context) {
	q := venuesapp.GetVenueBookingsQuery{VenueID: venueID(c)}
	result, err := queries.Ask[venuesapp.GetVenueBookingsQuery, dto.VenueBookings](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Availability returns the disabled days; with from and to it also reports
// whether that stay is free.
func (h VenueHandler) Availability(c *gin.Context) {
	r, err := rangeParams(c, false)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	q := venuesapp.GetAvailabilityQuery{VenueID: venueID(c), Range: r}
	result, err := queries.Ask[venuesapp.GetAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VenueHandler) Quote(c *gin.Context) {
	r, err := rangeParams(c, true)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	q := venuesapp.GetQuoteQuery{VenueID: venueID(c), Range: r}
	result, err := queries.Ask[venuesapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func venueID(c *gin.Context) domainvenues.VenueID {
	return domainvenues.VenueID(c.Param("id"))
}

func rangeParams(c *gin.Context, required bool) (daterange.Range, error) {
	from, err := daterange.ParseDay(c.Query("from"))
	if err != nil {
		return daterange.Range{}, err
	}
	to, err := daterange.ParseDay(c.Query("to"))
	if err != nil {
		return daterange.Range{}, err
	}
	r := daterange.Range{From: from, To: to}
	if r.IsZero() && !required {
		return r, nil
	}
	if !r.From.Valid() || !r.To.Valid() {
		return daterange.Range{}, daterange.ErrInvalidRange
	}
	return r, nil
}

var _ VenueHTTP = VenueHandler{}
