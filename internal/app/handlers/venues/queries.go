package venues

import (
	"context"
	"time"

	"holidaze/internal/app/dto"
	"holidaze/internal/app/policies"
	"holidaze/internal/app/queries"
	"holidaze/internal/domain/availability"
	"holidaze/internal/domain/pricing"
	"holidaze/internal/domain/shared/daterange"
	domainvenues "holidaze/internal/domain/venues"
)

const (
	getVenueKey         = "venues.get"
	getVenueBookingsKey = "venues.bookings"
	getAvailabilityKey  = "venues.availability"
	getQuoteKey         = "venues.quote"
)

type GetVenueQuery struct {
	VenueID domainvenues.VenueID
}

func (GetVenueQuery) Key() string { return getVenueKey }

type GetVenueHandler struct {
	Venues policies.VenueReader
}

func (h *GetVenueHandler) Handle(ctx context.Context, q GetVenueQuery) (domainvenues.Venue, error) {
	return h.Venues.Venue(ctx, q.VenueID)
}

type GetVenueBookingsQuery struct {
	VenueID domainvenues.VenueID
}

func (GetVenueBookingsQuery) Key() string { return getVenueBookingsKey }

type GetVenueBookingsHandler struct {
	Reader *Reader
}

func (h *GetVenueBookingsHandler) Handle(ctx context.Context, q GetVenueBookingsQuery) (dto.VenueBookings, error) {
	bookings, err := h.Reader.Bookings(ctx, q.VenueID)
	if err != nil {
		return dto.VenueBookings{}, err
	}
	if bookings == nil {
		bookings = []domainvenues.Booking{}
	}
	return dto.VenueBookings{VenueID: q.VenueID, Bookings: bookings}, nil
}

// GetAvailabilityQuery asks for the disabled days of a venue and, when Range
// is set, whether that stay is currently free.
type GetAvailabilityQuery struct {
	VenueID domainvenues.VenueID
	Range   daterange.Range
}

func (GetAvailabilityQuery) Key() string { return getAvailabilityKey }

type GetAvailabilityHandler struct {
	Venues policies.VenueReader
	Now    func() time.Time
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (dto.Availability, error) {
	venue, err := h.Venues.Venue(ctx, q.VenueID)
	if err != nil {
		return dto.Availability{}, err
	}
	cal := availability.NewCalendar(venue, h.now())
	out := dto.MapCalendar(cal)
	if !q.Range.IsZero() {
		out = out.WithRange(q.Range, cal.CanReserve(q.Range))
	}
	return out, nil
}

func (h *GetAvailabilityHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type GetQuoteQuery struct {
	VenueID domainvenues.VenueID
	Range   daterange.Range
}

func (GetQuoteQuery) Key() string { return getQuoteKey }

type GetQuoteHandler struct {
	Venues policies.VenueReader
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	venue, err := h.Venues.Venue(ctx, q.VenueID)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.Quote{
		VenueID: q.VenueID,
		Range:   q.Range,
		Quote:   pricing.ComputeTotal(venue.Price, q.Range),
	}, nil
}

var (
	_ queries.Handler[GetVenueQuery, domainvenues.Venue]        = (*GetVenueHandler)(nil)
	_ queries.Handler[GetVenueBookingsQuery, dto.VenueBookings] = (*GetVenueBookingsHandler)(nil)
	_ queries.Handler[GetAvailabilityQuery, dto.Availability]   = (*GetAvailabilityHandler)(nil)
	_ queries.Handler[GetQuoteQuery, dto.Quote]                 = (*GetQuoteHandler)(nil)
)
