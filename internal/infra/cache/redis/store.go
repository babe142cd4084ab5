package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"holidaze/internal/app/cache"
)

const defaultPrefix = "holidaze:cache:"

// Store keeps query cache entries in Redis so several BFF instances share
// one cache. Entries expire after Retention; freshness is decided by the
// cache client from FetchedAt.
type Store struct {
	Client    goredis.UniversalClient
	Prefix    string
	Retention time.Duration
}

type Options struct {
	Addr      string
	Password  string
	DB        int
	Prefix    string
	Retention time.Duration
}

func New(opts Options) *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Store{Client: client, Prefix: opts.Prefix, Retention: opts.Retention}
}

type entryDocument struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

func (s *Store) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	raw, err := s.Client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	var doc entryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return cache.Entry{}, false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return cache.Entry{Value: []byte(doc.Value), FetchedAt: doc.FetchedAt}, true, nil
}

func (s *Store) Set(ctx context.Context, key string, entry cache.Entry) error {
	if !json.Valid(entry.Value) {
		return fmt.Errorf("redis: set %s: value is not json", key)
	}
	raw, err := json.Marshal(entryDocument{Value: entry.Value, FetchedAt: entry.FetchedAt.UTC()})
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.key(key), raw, s.Retention).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.Client.Close()
}

func (s *Store) key(k string) string {
	if s.Prefix == "" {
		return defaultPrefix + k
	}
	return s.Prefix + k
}

var _ cache.Store = (*Store)(nil)
