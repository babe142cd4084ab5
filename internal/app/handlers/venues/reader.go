package venues

import (
	"context"
	"errors"

	"holidaze/internal/app/cache"
	"holidaze/internal/app/policies"
	domainvenues "holidaze/internal/domain/venues"
)

var ErrReaderNotConfigured = errors.New("venues: reader missing cache or source")

// Reader serves venue views through the query cache. It only reads; the
// booking coordinator is the one component allowed to invalidate.
type Reader struct {
	Cache  *cache.Client
	Source policies.VenueSource
}

func (r *Reader) Venue(ctx context.Context, id domainvenues.VenueID) (domainvenues.Venue, error) {
	if r == nil || r.Cache == nil || r.Source == nil {
		return domainvenues.Venue{}, ErrReaderNotConfigured
	}
	return cache.Fetch(ctx, r.Cache, cache.VenueKey(id), func(ctx context.Context) (domainvenues.Venue, error) {
		return r.Source.FetchVenue(ctx, id)
	})
}

// Bookings is the manager-facing bookings view of a venue.
func (r *Reader) Bookings(ctx context.Context, id domainvenues.VenueID) ([]domainvenues.Booking, error) {
	if r == nil || r.Cache == nil || r.Source == nil {
		return nil, ErrReaderNotConfigured
	}
	return cache.Fetch(ctx, r.Cache, cache.VenueBookingsKey(id), func(ctx context.Context) ([]domainvenues.Booking, error) {
		venue, err := r.Source.FetchVenue(ctx, id)
		if err != nil {
			return nil, err
		}
		return venue.Bookings, nil
	})
}

var _ policies.VenueReader = (*Reader)(nil)
