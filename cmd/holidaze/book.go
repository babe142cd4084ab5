package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"holidaze/internal/app/dto"
	"holidaze/internal/app/session"
	"holidaze/internal/app/widget"
	"holidaze/internal/domain/venues"
)

func newBookCmd(flags *globalFlags) *cobra.Command {
	var (
		from, to string
		guests   int
		token    string
	)
	cmd := &cobra.Command{
		Use:   "book <venue-id>",
		Short: "Book a stay through the booking widget flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stay, err := parseStay(from, to, true)
			if err != nil {
				return err
			}
			if token == "" {
				token = os.Getenv("HOLIDAZE_TOKEN")
			}
			return withApplication(cmd.Context(), flags, func(ctx context.Context, app *application) error {
				venue, err := app.reader.Venue(ctx, venues.VenueID(args[0]))
				if err != nil {
					return err
				}
				w := widget.New(widget.Config{
					Venue:    venue,
					Session:  session.Static(token),
					Commands: app.commands,
					Notifier: printNotifier{out: cmd.OutOrStdout()},
					Venues:   app.reader,
					Logger:   app.logger,
				})
				if w.SelectRange(stay.From, stay.To) != widget.StateRangeSelected {
					return fmt.Errorf("stay %s has no nights", stay)
				}
				if got := w.SetGuests(guests); got != guests {
					fmt.Fprintf(cmd.ErrOrStderr(), "guests adjusted to %d (venue allows 1-%d)\n", got, venue.Capacity())
				}
				snap := w.Snapshot()
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nights x %.2f = %.2f\n", venue.Name, snap.Quote.Nights, snap.Quote.PricePerNight, snap.Quote.Total)
				_, err = w.Submit(ctx)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "check-in day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "check-out day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&guests, "guests", 1, "number of guests")
	cmd.Flags().StringVar(&token, "token", "", "access token (default $HOLIDAZE_TOKEN)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// printNotifier shows widget notices on the terminal.
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) Notify(_ context.Context, notice dto.Notice) error {
	switch notice.Level {
	case dto.NoticeSuccess:
		_, err := fmt.Fprintf(n.out, "%s (booking %s)\n", notice.Message, notice.BookingID)
		return err
	default:
		_, err := fmt.Fprintf(n.out, "booking failed [%s]: %s\n", notice.Kind, notice.Message)
		return err
	}
}
