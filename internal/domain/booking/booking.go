package booking

import (
	"time"

	"holidaze/internal/domain/pricing"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

// Request is the payload sent to the booking API. It lives only for the
// duration of one submission and has no identity of its own.
type Request struct {
	VenueID  venues.VenueID `json:"venueId"`
	DateFrom daterange.Day  `json:"dateFrom"`
	DateTo   daterange.Day  `json:"dateTo"`
	Guests   int            `json:"guests"`
}

func (r Request) Range() daterange.Range {
	return daterange.Range{From: r.DateFrom, To: r.DateTo}
}

// Confirmation is what the API returns for a created booking.
type Confirmation struct {
	ID       string         `json:"id"`
	VenueID  venues.VenueID `json:"venueId"`
	DateFrom daterange.Day  `json:"dateFrom"`
	DateTo   daterange.Day  `json:"dateTo"`
	Guests   int            `json:"guests"`
	Quote    pricing.Quote  `json:"quote"`
	Created  time.Time      `json:"created"`
}

type Submitted struct {
	BookingID string          `json:"bookingId"`
	VenueID   string          `json:"venueId"`
	Range     daterange.Range `json:"range"`
	Guests    int             `json:"guests"`
	Total     float64         `json:"total"`
	At        time.Time       `json:"at"`
}

func (e Submitted) EventName() string     { return "booking.submitted" }
func (e Submitted) AggregateID() string   { return e.VenueID }
func (e Submitted) OccurredAt() time.Time { return e.At }

// SubmittedEvent builds the event recorded after the API accepted a booking.
func SubmittedEvent(c Confirmation, at time.Time) Submitted {
	return Submitted{
		BookingID: c.ID,
		VenueID:   string(c.VenueID),
		Range:     daterange.Range{From: c.DateFrom, To: c.DateTo},
		Guests:    c.Guests,
		Total:     c.Quote.Total,
		At:        at.UTC(),
	}
}
