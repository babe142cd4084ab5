package availability

import (
	"errors"
	"slices"
	"time"

	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/shared/events"
	"holidaze/internal/domain/venues"
)

var ErrOverlappingRange = errors.New("availability: range overlaps with an existing booking")

// DisabledDays is the set of calendar days a venue cannot be booked for.
type DisabledDays map[daterange.Day]struct{}

// BuildDisabledDays unions the occupied nights of every booking. Checkout days
// are left free unless another stay covers them.
func BuildDisabledDays(bookings []daterange.Range) DisabledDays {
	set := make(DisabledDays)
	for _, b := range bookings {
		for day := range b.Days() {
			set[day] = struct{}{}
		}
	}
	return set
}

func (d DisabledDays) Contains(day daterange.Day) bool {
	_, ok := d[day]
	return ok
}

func (d DisabledDays) Len() int { return len(d) }

// Sorted returns the disabled days in calendar order.
func (d DisabledDays) Sorted() []daterange.Day {
	out := make([]daterange.Day, 0, len(d))
	for day := range d {
		out = append(out, day)
	}
	slices.Sort(out)
	return out
}

// IsRangeAvailable is the client-side pre-check for a stay. It is advisory:
// bookings made concurrently elsewhere are only seen after a re-fetch, and the
// API stays the final arbiter.
func IsRangeAvailable(r daterange.Range, bookings []daterange.Range) bool {
	if daterange.NightsBetween(r.From, r.To) <= 0 {
		return false
	}
	for _, b := range bookings {
		if daterange.Overlaps(r.From, r.To, b.From, b.To) {
			return false
		}
	}
	return true
}

// IsSelectable reports whether a day may be picked in the calendar: it must
// not be disabled and must not lie before today.
func IsSelectable(day, today daterange.Day, disabled DisabledDays) bool {
	if !day.Valid() || day.Before(today) {
		return false
	}
	return !disabled.Contains(day)
}

// Calendar is the availability view of one venue as of a given day.
type Calendar struct {
	VenueID  venues.VenueID
	Today    daterange.Day
	Disabled DisabledDays
	bookings []daterange.Range
	events.Recorder
}

func NewCalendar(venue venues.Venue, now time.Time) *Calendar {
	bookings := venue.Intervals()
	return &Calendar{
		VenueID:  venue.ID,
		Today:    daterange.Today(now),
		Disabled: BuildDisabledDays(bookings),
		bookings: bookings,
	}
}

func (c *Calendar) Selectable(day daterange.Day) bool {
	return IsSelectable(day, c.Today, c.Disabled)
}

func (c *Calendar) CanReserve(r daterange.Range) bool {
	return IsRangeAvailable(r, c.bookings)
}

// Reserve checks r against the calendar and records an OverbookingPrevented
// event when it collides with an existing stay.
func (c *Calendar) Reserve(r daterange.Range, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if !c.CanReserve(r) {
		c.Record(OverbookingPrevented{VenueID: string(c.VenueID), Range: r, At: now.UTC()})
		return ErrOverlappingRange
	}
	return nil
}
