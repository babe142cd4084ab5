package dto

import (
	"holidaze/internal/domain/availability"
	"holidaze/internal/domain/pricing"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

type Availability struct {
	VenueID      venues.VenueID   `json:"venueId"`
	Today        daterange.Day    `json:"today"`
	DisabledDays []daterange.Day  `json:"disabledDays"`
	Range        *daterange.Range `json:"range,omitempty"`
	Available    *bool            `json:"available,omitempty"`
}

func MapCalendar(cal *availability.Calendar) Availability {
	return Availability{
		VenueID:      cal.VenueID,
		Today:        cal.Today,
		DisabledDays: cal.Disabled.Sorted(),
	}
}

// WithRange attaches the verdict for a requested stay.
func (a Availability) WithRange(r daterange.Range, available bool) Availability {
	a.Range = &r
	a.Available = &available
	return a
}

type Quote struct {
	VenueID venues.VenueID  `json:"venueId"`
	Range   daterange.Range `json:"range"`
	pricing.Quote
}

type VenueBookings struct {
	VenueID  venues.VenueID   `json:"venueId"`
	Bookings []venues.Booking `json:"bookings"`
}
