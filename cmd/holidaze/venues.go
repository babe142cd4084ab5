package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"holidaze/internal/app/dto"
	venuesapp "holidaze/internal/app/handlers/venues"
	"holidaze/internal/app/queries"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

func newAvailabilityCmd(flags *globalFlags) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "availability <venue-id>",
		Short: "Print the disabled days of a venue, optionally checking a stay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stay, err := parseStay(from, to, false)
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), flags, func(ctx context.Context, app *application) error {
				q := venuesapp.GetAvailabilityQuery{VenueID: venues.VenueID(args[0]), Range: stay}
				result, err := queries.Ask[venuesapp.GetAvailabilityQuery, dto.Availability](ctx, app.queries, q)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "check-in day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "check-out day (YYYY-MM-DD)")
	return cmd
}

func newQuoteCmd(flags *globalFlags) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "quote <venue-id>",
		Short: "Price a stay at a venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stay, err := parseStay(from, to, true)
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), flags, func(ctx context.Context, app *application) error {
				q := venuesapp.GetQuoteQuery{VenueID: venues.VenueID(args[0]), Range: stay}
				result, err := queries.Ask[venuesapp.GetQuoteQuery, dto.Quote](ctx, app.queries, q)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "check-in day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "check-out day (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func withApplication(ctx context.Context, flags *globalFlags, fn func(ctx context.Context, app *application) error) error {
	cfg, logger, err := loadConfig(flags, true)
	if err != nil {
		return err
	}
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Error("cleanup failed", "error", err)
		}
	}()
	return fn(ctx, app)
}

func parseStay(from, to string, required bool) (daterange.Range, error) {
	if from == "" && to == "" && !required {
		return daterange.Range{}, nil
	}
	f, err := daterange.ParseDay(from)
	if err != nil {
		return daterange.Range{}, fmt.Errorf("invalid --from: %w", err)
	}
	t, err := daterange.ParseDay(to)
	if err != nil {
		return daterange.Range{}, fmt.Errorf("invalid --to: %w", err)
	}
	if !f.Valid() || !t.Valid() {
		return daterange.Range{}, fmt.Errorf("--from and --to are both required (YYYY-MM-DD)")
	}
	return daterange.Range{From: f, To: t}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
