package policies

import (
	"context"

	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/venues"
)

// VenueSource fetches a venue, including its bookings, from the remote API.
type VenueSource interface {
	FetchVenue(ctx context.Context, id venues.VenueID) (venues.Venue, error)
}

// VenueReader reads a venue through the query cache.
type VenueReader interface {
	Venue(ctx context.Context, id venues.VenueID) (venues.Venue, error)
}

// BookingAPI creates bookings on behalf of the token's owner.
type BookingAPI interface {
	CreateBooking(ctx context.Context, token string, req booking.Request) (booking.Confirmation, error)
}

// RemoteError is a normalized error returned by the remote API.
type RemoteError interface {
	error
	StatusCode() int
	Messages() []string
}
