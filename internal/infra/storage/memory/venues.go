package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"holidaze/internal/app/policies"
	"holidaze/internal/domain/availability"
	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

// VenueCatalog stands in for the remote API in local runs and tests. It owns
// the bookings and, like the real API, rejects overlapping ones.
type VenueCatalog struct {
	mu    sync.RWMutex
	items map[venues.VenueID]venues.Venue
	now   func() time.Time
}

func NewVenueCatalog(seed ...venues.Venue) *VenueCatalog {
	c := &VenueCatalog{items: make(map[venues.VenueID]venues.Venue), now: time.Now}
	for _, v := range seed {
		c.items[v.ID] = cloneVenue(v)
	}
	return c
}

// Save stores or replaces a venue.
func (c *VenueCatalog) Save(v venues.Venue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[v.ID] = cloneVenue(v)
}

func (c *VenueCatalog) FetchVenue(ctx context.Context, id venues.VenueID) (venues.Venue, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	if !ok {
		return venues.Venue{}, fmt.Errorf("%w: %s", venues.ErrVenueNotFound, id)
	}
	return cloneVenue(v), nil
}

func (c *VenueCatalog) CreateBooking(ctx context.Context, token string, req booking.Request) (booking.Confirmation, error) {
	if token == "" {
		return booking.Confirmation{}, &RemoteError{Status: http.StatusUnauthorized, Msgs: []string{"Missing authorization header"}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[req.VenueID]
	if !ok {
		return booking.Confirmation{}, &RemoteError{Status: http.StatusNotFound, Msgs: []string{"No venue with such ID"}}
	}
	stay := req.Range()
	if err := stay.Validate(); err != nil {
		msg := "dateTo must be after dateFrom"
		if errors.Is(err, daterange.ErrStayTooLong) {
			msg = fmt.Sprintf("Bookings cannot exceed %d nights", daterange.MaxStayNights)
		}
		return booking.Confirmation{}, &RemoteError{Status: http.StatusBadRequest, Msgs: []string{msg}}
	}
	if !v.AcceptsGuests(req.Guests) {
		return booking.Confirmation{}, &RemoteError{Status: http.StatusBadRequest, Msgs: []string{fmt.Sprintf("Guests cannot exceed %d", v.Capacity())}}
	}
	if !availability.IsRangeAvailable(stay, v.Intervals()) {
		return booking.Confirmation{}, &RemoteError{Status: http.StatusConflict, Msgs: []string{"Venue is already booked for the selected dates"}}
	}
	id := uuid.NewString()
	v.Bookings = append(v.Bookings, venues.Booking{ID: id, Range: stay, Guests: req.Guests})
	c.items[v.ID] = v
	return booking.Confirmation{
		ID:       id,
		VenueID:  v.ID,
		DateFrom: stay.From,
		DateTo:   stay.To,
		Guests:   req.Guests,
		Created:  c.now().UTC(),
	}, nil
}

// RemoteError mirrors the API's error envelope.
type RemoteError struct {
	Status int
	Msgs   []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("memory: status %d: %v", e.Status, e.Msgs)
}

func (e *RemoteError) StatusCode() int    { return e.Status }
func (e *RemoteError) Messages() []string { return e.Msgs }

// DemoVenues seeds the catalog for local runs.
func DemoVenues(now time.Time) []venues.Venue {
	today := daterange.Today(now)
	return []venues.Venue{
		{
			ID:        "demo-fjord-cabin",
			Name:      "Fjord cabin",
			Price:     150,
			MaxGuests: 4,
			Bookings: []venues.Booking{
				{ID: "demo-1", Range: daterange.Range{From: today.AddDays(3), To: today.AddDays(5)}, Guests: 2},
				{ID: "demo-2", Range: daterange.Range{From: today.AddDays(9), To: today.AddDays(12)}, Guests: 3},
			},
		},
		{
			ID:        "demo-city-loft",
			Name:      "City loft",
			Price:     95.5,
			MaxGuests: 2,
		},
	}
}

func cloneVenue(v venues.Venue) venues.Venue {
	v.Bookings = append([]venues.Booking(nil), v.Bookings...)
	return v
}

var (
	_ policies.VenueSource = (*VenueCatalog)(nil)
	_ policies.BookingAPI  = (*VenueCatalog)(nil)
	_ policies.RemoteError = (*RemoteError)(nil)
)
