package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mapStore struct {
	mu      sync.Mutex
	items   map[string]Entry
	deletes []string
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string]Entry)}
}

func (s *mapStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	return e, ok, nil
}

func (s *mapStore) Set(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	s.deletes = append(s.deletes, key)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClient(store Store, clock *testClock) *Client {
	return NewClient(store, Options{Freshness: time.Minute, Now: clock.Now})
}

func TestKeys(t *testing.T) {
	if got := VenueKey("v-1").String(); got != "venue:v-1" {
		t.Fatalf("unexpected venue key %q", got)
	}
	if got := VenueBookingsKey("v-1").String(); got != "venue:v-1:bookings" {
		t.Fatalf("unexpected bookings key %q", got)
	}
}

func TestGetReadsThroughAndServesFresh(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestClient(newMapStore(), clock)
	var calls atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("v1"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.Get(context.Background(), VenueKey("a"), fetch)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(got) != "v1" {
			t.Fatalf("unexpected value %q", got)
		}
	}
	c.Wait()
	if calls.Load() != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls.Load())
	}
}

func TestGetServesStaleAndRefreshes(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestClient(newMapStore(), clock)
	var version atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		if version.Add(1) == 1 {
			return []byte("old"), nil
		}
		return []byte("new"), nil
	}

	if _, err := c.Get(context.Background(), VenueKey("a"), fetch); err != nil {
		t.Fatalf("get: %v", err)
	}
	clock.Advance(2 * time.Minute)

	got, err := c.Get(context.Background(), VenueKey("a"), fetch)
	if err != nil {
		t.Fatalf("stale get: %v", err)
	}
	if string(got) != "old" {
		t.Fatalf("expected stale value while revalidating, got %q", got)
	}
	c.Wait()

	got, err = c.Get(context.Background(), VenueKey("a"), fetch)
	if err != nil {
		t.Fatalf("get after refresh: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected refreshed value, got %q", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := newMapStore()
	c := newTestClient(store, clock)
	var calls atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("v"), nil
	}

	if _, err := c.Get(context.Background(), VenueKey("a"), fetch); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := c.Invalidate(context.Background(), VenueKey("a")); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := c.Get(context.Background(), VenueKey("a"), fetch); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected refetch after invalidation, got %d fetches", calls.Load())
	}
	if len(store.deletes) != 1 || store.deletes[0] != "venue:a" {
		t.Fatalf("unexpected deletes %v", store.deletes)
	}
}

func TestInvalidateFencesInFlightLoad(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := newMapStore()
	c := newTestClient(store, clock)

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(context.Context) ([]byte, error) {
		close(started)
		<-release
		return []byte("before-invalidate"), nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.Get(context.Background(), VenueKey("a"), slow); err != nil {
			t.Errorf("slow get: %v", err)
		}
	}()
	<-started
	if err := c.Invalidate(context.Background(), VenueKey("a")); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(release)
	<-done

	if _, ok, _ := store.Get(context.Background(), "venue:a"); ok {
		t.Fatal("load that began before invalidation must not repopulate the cache")
	}

	got, err := c.Get(context.Background(), VenueKey("a"), func(context.Context) ([]byte, error) {
		return []byte("after-invalidate"), nil
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "after-invalidate" {
		t.Fatalf("expected post-invalidation value, got %q", got)
	}
}

func TestGetPropagatesFetchError(t *testing.T) {
	clock := &testClock{now: time.Now()}
	store := newMapStore()
	c := newTestClient(store, clock)
	boom := errors.New("boom")
	_, err := c.Get(context.Background(), VenueKey("a"), func(context.Context) ([]byte, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(store.items) != 0 {
		t.Fatal("failed fetch must not be cached")
	}
	if _, err := c.Get(context.Background(), VenueKey("a"), nil); !errors.Is(err, ErrFetcherMissing) {
		t.Fatalf("expected ErrFetcherMissing, got %v", err)
	}
}

func TestFetchTyped(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	clock := &testClock{now: time.Now()}
	c := newTestClient(newMapStore(), clock)
	var calls int
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Name: "Cabin", Price: 150}, nil
	}
	for i := 0; i < 2; i++ {
		got, err := Fetch(context.Background(), c, VenueKey("cabin"), load)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got.Name != "Cabin" || got.Price != 150 {
			t.Fatalf("unexpected payload %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single load, got %d", calls)
	}
}
