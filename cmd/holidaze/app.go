package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"holidaze/internal/app/cache"
	"holidaze/internal/app/commands"
	bookingapp "holidaze/internal/app/handlers/booking"
	venuesapp "holidaze/internal/app/handlers/venues"
	"holidaze/internal/app/middleware"
	appoutbox "holidaze/internal/app/outbox"
	"holidaze/internal/app/policies"
	"holidaze/internal/app/queries"
	rediscache "holidaze/internal/infra/cache/redis"
	"holidaze/internal/infra/config"
	mongodb "holidaze/internal/infra/db/mongo"
	"holidaze/internal/infra/holidaze"
	ginserver "holidaze/internal/infra/http/gin"
	"holidaze/internal/infra/obs"
	infraoutbox "holidaze/internal/infra/outbox"
	"holidaze/internal/infra/storage/memory"
)

type application struct {
	cfg    config.Config
	logger *slog.Logger

	cache    *cache.Client
	reader   *venuesapp.Reader
	commands commands.Bus
	queries  queries.Bus

	// outboxStore is set when Mongo is configured; otherwise events stay in
	// memory and are not relayed.
	outboxStore *infraoutbox.Store
	checks      map[string]obs.Check
	closers     []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger, checks: map[string]obs.Check{}}

	var (
		source policies.VenueSource
		api    policies.BookingAPI
	)
	if cfg.DemoAPI() {
		catalog := memory.NewVenueCatalog(memory.DemoVenues(time.Now())...)
		source, api = catalog, catalog
		logger.Warn("using in-memory demo venues instead of the remote api")
	} else {
		client := holidaze.New(cfg.APIURL, cfg.APIKey, cfg.APITimeout)
		client.Logger = logger
		source, api = client, client
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rs := rediscache.New(rediscache.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Retention: 24 * time.Hour,
		})
		app.checks["redis"] = rs.Ping
		app.closers = append(app.closers, func(context.Context) error { return rs.Close() })
		store = rs
	default:
		store = memory.NewCacheStore()
	}
	app.cache = cache.NewClient(store, cache.Options{Freshness: cfg.CacheFreshness, Logger: logger})
	app.reader = &venuesapp.Reader{Cache: app.cache, Source: source}

	var box appoutbox.Outbox = memory.NewOutbox(memory.DefaultOutboxCapacity)
	if cfg.MongoURI != "" {
		mc, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, mc.Close)
		app.checks["mongo"] = mc.Ping
		outboxStore, err := infraoutbox.NewStore(ctx, mc.DB)
		if err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
		app.outboxStore = outboxStore
		box = outboxStore
	}

	commandBus := commands.NewInMemoryBus()
	commands.Register(commandBus, &bookingapp.SubmitBookingHandler{
		Venues: app.reader,
		API:    api,
		Cache:  app.cache,
		Outbox: box,
		Logger: logger,
	})
	app.commands = middleware.ChainCommands(commandBus, middleware.CommandLogging(logger))

	queryBus := queries.NewInMemoryBus()
	queries.Register(queryBus, &venuesapp.GetVenueHandler{Venues: app.reader})
	queries.Register(queryBus, &venuesapp.GetVenueBookingsHandler{Reader: app.reader})
	queries.Register(queryBus, &venuesapp.GetAvailabilityHandler{Venues: app.reader})
	queries.Register(queryBus, &venuesapp.GetQuoteHandler{Venues: app.reader})
	app.queries = middleware.ChainQueries(queryBus, middleware.QueryLogging(logger))

	return app, nil
}

func (a *application) handlers() ginserver.Handlers {
	return ginserver.Handlers{
		Venues:  ginserver.VenueHandler{Queries: a.queries},
		Booking: ginserver.BookingHandler{Commands: a.commands},
	}
}

func (a *application) health() obs.HealthHandlers {
	return obs.HealthHandlers{Checks: a.checks}
}

// Close waits for background cache refreshes and releases connections in
// reverse order of creation.
func (a *application) Close(ctx context.Context) error {
	if a.cache != nil {
		a.cache.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
