package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultFreshness      = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
)

// Fetcher loads the authoritative value for a key.
type Fetcher func(ctx context.Context) ([]byte, error)

type Options struct {
	// Freshness is how long an entry is served without a background refresh.
	Freshness      time.Duration
	RefreshTimeout time.Duration
	Now            func() time.Time
	Logger         *slog.Logger
}

// Client is a read-through query cache with stale-while-revalidate reads.
// Concurrent loads of one key share a single fetch. Invalidate bumps a
// per-key generation so a fetch that started before the invalidation never
// writes its result back.
type Client struct {
	store          Store
	freshness      time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	gens  map[string]uint64
	bg    sync.WaitGroup
}

func NewClient(store Store, opts Options) *Client {
	if store == nil {
		panic(ErrStoreMissing)
	}
	c := &Client{
		store:          store,
		freshness:      opts.Freshness,
		refreshTimeout: opts.RefreshTimeout,
		now:            opts.Now,
		logger:         opts.Logger,
		gens:           make(map[string]uint64),
	}
	if c.freshness <= 0 {
		c.freshness = defaultFreshness
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = defaultRefreshTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Get returns the cached value for key. Fresh entries are returned as is;
// stale entries are returned immediately while a refresh runs in the
// background; missing entries are fetched synchronously.
func (c *Client) Get(ctx context.Context, key Key, fetch Fetcher) ([]byte, error) {
	if fetch == nil {
		return nil, ErrFetcherMissing
	}
	k := key.String()
	entry, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.logger.Warn("cache read failed, fetching from source", "key", k, "error", err)
		ok = false
	}
	if ok {
		if c.now().Sub(entry.FetchedAt) >= c.freshness {
			c.refreshAsync(ctx, k, fetch)
		}
		return entry.Value, nil
	}
	return c.load(ctx, k, fetch)
}

// Invalidate drops the entry for key and fences off in-flight loads.
func (c *Client) Invalidate(ctx context.Context, key Key) error {
	k := key.String()
	c.mu.Lock()
	c.gens[k]++
	c.mu.Unlock()
	if err := c.store.Delete(ctx, k); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", k, err)
	}
	c.logger.Debug("cache invalidated", "key", k)
	return nil
}

// Wait blocks until background refreshes have finished.
func (c *Client) Wait() {
	c.bg.Wait()
}

func (c *Client) load(ctx context.Context, k string, fetch Fetcher) ([]byte, error) {
	gen := c.generation(k)
	res, err, _ := c.group.Do(k+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(ctx, k, gen, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func (c *Client) refreshAsync(ctx context.Context, k string, fetch Fetcher) {
	parent := context.WithoutCancel(ctx)
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		rctx, cancel := context.WithTimeout(parent, c.refreshTimeout)
		defer cancel()
		if _, err := c.load(rctx, k, fetch); err != nil {
			c.logger.Warn("cache background refresh failed", "key", k, "error", err)
		}
	}()
}

func (c *Client) generation(k string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[k]
}

func (c *Client) storeIfCurrent(ctx context.Context, k string, gen uint64, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[k] != gen {
		return
	}
	if err := c.store.Set(ctx, k, Entry{Value: value, FetchedAt: c.now()}); err != nil {
		c.logger.Warn("cache write failed", "key", k, "error", err)
	}
}

// Fetch is the typed form of Client.Get; values are stored as JSON.
func Fetch[T any](ctx context.Context, c *Client, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	raw, err := c.Get(ctx, key, func(ctx context.Context) ([]byte, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return out, nil
}
