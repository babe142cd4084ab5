package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"holidaze/internal/app/cache"
	domainbooking "holidaze/internal/domain/booking"
	"holidaze/internal/domain/venues"
)

// CacheSync replays booking invalidations published by other BFF instances
// so their in-process caches do not serve bookings they never saw.
type CacheSync struct {
	Cache  cache.Invalidator
	Logger *slog.Logger
}

func (s *CacheSync) HandleEvent(ctx context.Context, name string, data []byte) error {
	if name != (domainbooking.Submitted{}).EventName() {
		return nil
	}
	var evt domainbooking.Submitted
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("booking: decode %s: %w", name, err)
	}
	if evt.VenueID == "" {
		return fmt.Errorf("booking: %s without venue id", name)
	}
	id := venues.VenueID(evt.VenueID)
	for _, key := range []cache.Key{cache.VenueKey(id), cache.VenueBookingsKey(id)} {
		if err := s.Cache.Invalidate(ctx, key); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Debug("peer booking invalidated cache", "venue_id", id, "booking_id", evt.BookingID)
	}
	return nil
}
