package venues

import (
	"errors"

	"holidaze/internal/domain/shared/daterange"
)

var (
	ErrVenueNotFound = errors.New("venues: venue not found")
	ErrInvalidVenue  = errors.New("venues: invalid venue")
)

type VenueID string

// Booking is an existing reservation on a venue, as reported by the API.
// Only its interval takes part in availability.
type Booking struct {
	ID       string          `json:"id"`
	Range    daterange.Range `json:"range"`
	Guests   int             `json:"guests"`
	Customer string          `json:"customer,omitempty"`
}

// Venue is a read-only snapshot of a venue owned by the remote API. The
// booking list is replaced wholesale on re-fetch and never edited locally.
type Venue struct {
	ID        VenueID   `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	MaxGuests int       `json:"maxGuests"`
	Bookings  []Booking `json:"bookings"`
}

func (v Venue) Validate() error {
	if v.ID == "" {
		return ErrInvalidVenue
	}
	if v.Price < 0 || v.MaxGuests < 1 {
		return ErrInvalidVenue
	}
	return nil
}

// Intervals returns the occupied ranges of the venue's bookings.
func (v Venue) Intervals() []daterange.Range {
	out := make([]daterange.Range, 0, len(v.Bookings))
	for _, b := range v.Bookings {
		out = append(out, b.Range)
	}
	return out
}

// Capacity is MaxGuests floored at one guest.
func (v Venue) Capacity() int {
	if v.MaxGuests < 1 {
		return 1
	}
	return v.MaxGuests
}

// AcceptsGuests reports whether n fits the venue's capacity.
func (v Venue) AcceptsGuests(n int) bool {
	return n >= 1 && n <= v.Capacity()
}

// ClampGuests forces n into [1, Capacity()].
func (v Venue) ClampGuests(n int) int {
	return min(max(n, 1), v.Capacity())
}
