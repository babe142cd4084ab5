package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"holidaze/internal/domain/venues"
)

var (
	ErrStoreMissing   = errors.New("cache: store missing")
	ErrFetcherMissing = errors.New("cache: fetcher missing")
)

// Key identifies a cached view, e.g. ("venue", id). Every reader and the
// booking coordinator must build keys through the helpers below so that
// invalidation hits what readers populated.
type Key []string

func (k Key) String() string {
	return strings.Join(k, ":")
}

func VenueKey(id venues.VenueID) Key {
	return Key{"venue", string(id)}
}

func VenueBookingsKey(id venues.VenueID) Key {
	return Key{"venue", string(id), "bookings"}
}

// Entry is a cached payload and the time it was fetched from the source.
type Entry struct {
	Value     []byte    `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Store is the raw key/value backend of the query cache.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// Invalidator marks cached views stale so the next read re-fetches them.
type Invalidator interface {
	Invalidate(ctx context.Context, key Key) error
}
