package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"holidaze/internal/app/cache"
	"holidaze/internal/app/commands"
	"holidaze/internal/app/outbox"
	"holidaze/internal/app/policies"
	"holidaze/internal/app/session"
	"holidaze/internal/domain/availability"
	domainbooking "holidaze/internal/domain/booking"
	"holidaze/internal/domain/pricing"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/shared/events"
	"holidaze/internal/domain/venues"
)

const submitBookingKey = "booking.submit"

// SubmitBookingCommand asks to book a stay. Session is the caller's token
// accessor; it is passed per call rather than held by the handler.
type SubmitBookingCommand struct {
	Session session.TokenSource
	Request domainbooking.Request
}

func (SubmitBookingCommand) Key() string { return submitBookingKey }

var ErrHandlerNotConfigured = errors.New("booking: submit handler missing dependencies")

// SubmitBookingHandler validates a booking locally, sends it to the API and,
// on success, invalidates the cached venue views so availability is
// recomputed from the server's bookings. It never edits cached bookings and
// never retries.
type SubmitBookingHandler struct {
	Venues  policies.VenueReader
	API     policies.BookingAPI
	Cache   cache.Invalidator
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *SubmitBookingHandler) Handle(ctx context.Context, cmd SubmitBookingCommand) (domainbooking.Confirmation, error) {
	var zero domainbooking.Confirmation
	if h.Venues == nil || h.API == nil || h.Cache == nil {
		return zero, ErrHandlerNotConfigured
	}

	token, ok := session.Token(cmd.Session)
	if !ok {
		return zero, domainbooking.NewError(domainbooking.KindUnauthenticated, "", nil)
	}

	req := cmd.Request
	stay := req.Range()
	now := h.now()
	if err := stay.Validate(); err != nil {
		msg := ""
		if errors.Is(err, daterange.ErrStayTooLong) {
			msg = fmt.Sprintf("Stays cannot exceed %d nights", daterange.MaxStayNights)
		}
		return zero, domainbooking.NewError(domainbooking.KindInvalidDateRange, msg, err)
	}
	if stay.From.Before(daterange.Today(now)) {
		return zero, domainbooking.NewError(domainbooking.KindInvalidDateRange, "Check-in cannot be in the past", nil)
	}

	venue, err := h.Venues.Venue(ctx, req.VenueID)
	if err != nil {
		return zero, domainbooking.NewError(domainbooking.KindBookingFailed, "", fmt.Errorf("load venue %s: %w", req.VenueID, err))
	}
	if !venue.AcceptsGuests(req.Guests) {
		msg := fmt.Sprintf("Guests must be between 1 and %d", venue.Capacity())
		return zero, domainbooking.NewError(domainbooking.KindInvalidGuestCount, msg, nil)
	}

	cal := availability.NewCalendar(venue, now)
	if err := cal.Reserve(stay, now); err != nil {
		h.record(ctx, cal.Drain())
		return zero, domainbooking.NewError(domainbooking.KindDateRangeUnavailable, "", err)
	}

	conf, err := h.API.CreateBooking(ctx, token, req)
	if err != nil {
		return zero, h.remoteFailure(ctx, req.VenueID, err)
	}
	conf = fillConfirmation(conf, req, venue)

	h.invalidate(ctx, req.VenueID)
	h.record(ctx, []events.DomainEvent{domainbooking.SubmittedEvent(conf, now)})
	return conf, nil
}

// remoteFailure classifies an API error. A conflict reported by the server is
// authoritative: the cached bookings are known to be behind, so they are
// invalidated before the next attempt.
func (h *SubmitBookingHandler) remoteFailure(ctx context.Context, id venues.VenueID, err error) error {
	var remote policies.RemoteError
	if !errors.As(err, &remote) {
		return domainbooking.NewError(domainbooking.KindBookingFailed, "", err)
	}
	msg := firstMessage(remote.Messages())
	switch {
	case remote.StatusCode() == http.StatusUnauthorized || remote.StatusCode() == http.StatusForbidden:
		return domainbooking.NewError(domainbooking.KindUnauthenticated, msg, err)
	case isConflict(remote):
		h.invalidate(ctx, id)
		return domainbooking.NewError(domainbooking.KindDateRangeUnavailable, "", err)
	default:
		return domainbooking.NewError(domainbooking.KindBookingFailed, msg, err)
	}
}

func (h *SubmitBookingHandler) invalidate(ctx context.Context, id venues.VenueID) {
	for _, key := range []cache.Key{cache.VenueKey(id), cache.VenueBookingsKey(id)} {
		if err := h.Cache.Invalidate(ctx, key); err != nil {
			h.logger().Error("cache invalidation failed", "key", key.String(), "error", err)
		}
	}
}

func (h *SubmitBookingHandler) record(ctx context.Context, evs []events.DomainEvent) {
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoder, evs); err != nil {
		h.logger().Warn("outbox record failed", "error", err)
	}
}

func (h *SubmitBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *SubmitBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func fillConfirmation(conf domainbooking.Confirmation, req domainbooking.Request, venue venues.Venue) domainbooking.Confirmation {
	if conf.VenueID == "" {
		conf.VenueID = req.VenueID
	}
	if conf.DateFrom.IsZero() {
		conf.DateFrom = req.DateFrom
	}
	if conf.DateTo.IsZero() {
		conf.DateTo = req.DateTo
	}
	if conf.Guests == 0 {
		conf.Guests = req.Guests
	}
	conf.Quote = pricing.ComputeTotal(venue.Price, daterange.Range{From: conf.DateFrom, To: conf.DateTo})
	return conf
}

var conflictPhrases = []string{"already booked", "not available", "unavailable", "overlap", "conflict"}

func isConflict(remote policies.RemoteError) bool {
	if remote.StatusCode() == http.StatusConflict {
		return true
	}
	for _, m := range remote.Messages() {
		lower := strings.ToLower(m)
		for _, phrase := range conflictPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}

func firstMessage(msgs []string) string {
	for _, m := range msgs {
		if strings.TrimSpace(m) != "" {
			return m
		}
	}
	return ""
}

var _ commands.Handler[SubmitBookingCommand, domainbooking.Confirmation] = (*SubmitBookingHandler)(nil)
