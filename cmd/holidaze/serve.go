package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	bookingapp "holidaze/internal/app/handlers/booking"
	"holidaze/internal/domain/booking"
	"holidaze/internal/infra/broker/kafka"
	"holidaze/internal/infra/config"
	ginserver "holidaze/internal/infra/http/gin"
	"holidaze/internal/infra/obs"
	infraoutbox "holidaze/internal/infra/outbox"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking BFF HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags, false)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := buildApplication(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := app.Close(closeCtx); err != nil {
					logger.Error("shutdown cleanup failed", "error", err)
				}
			}()

			server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health(), app.handlers())
			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				logger.Info("HTTP server stopping")
				return server.Shutdown(shutdownCtx)
			})

			if err := startBrokerWorkers(ctx, g, app, cfg); err != nil {
				stop()
				_ = g.Wait()
				return err
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("HTTP server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

// startBrokerWorkers runs the outbox relay when Mongo and Kafka are both
// configured, and the peer cache-sync consumer when the cache is per process.
func startBrokerWorkers(ctx context.Context, g *errgroup.Group, app *application, cfg config.Config) error {
	logger := app.logger
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka not configured, outbox events stay local")
		return nil
	}

	if app.outboxStore != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig(cfg.KafkaGroupID))
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		relay := &infraoutbox.Worker{
			Queue:       app.outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		g.Go(func() error { return relay.Run(ctx) })
	}

	if cfg.CacheBackend != config.CacheMemory {
		return nil
	}
	// Every instance needs every booking event, so each joins its own group.
	groupID := cfg.KafkaGroupID + "-" + uuid.NewString()
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, groupID, nil, kafka.CloudEvents{
		Next: &bookingapp.CacheSync{Cache: app.cache, Logger: logger},
	}, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
	topic := infraoutbox.TopicFor(cfg.KafkaTopicPrefix, booking.Submitted{}.EventName())
	g.Go(func() error { return consumer.Run(ctx, []string{topic}) })
	return nil
}
