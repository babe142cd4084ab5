package widget

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"holidaze/internal/app/commands"
	"holidaze/internal/app/dto"
	bookingapp "holidaze/internal/app/handlers/booking"
	"holidaze/internal/app/policies"
	"holidaze/internal/app/session"
	"holidaze/internal/domain/availability"
	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/pricing"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

type State string

const (
	StateIdle          State = "IDLE"
	StateRangeSelected State = "RANGE_SELECTED"
	StateSubmitting    State = "SUBMITTING"
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not resolved yet.
var ErrSubmissionInFlight = errors.New("widget: submission already in flight")

const defaultGuests = 1

type Config struct {
	Venue    venues.Venue
	Session  session.TokenSource
	Commands commands.Bus
	Notifier policies.Notifier
	// Venues re-reads the venue after a booking or a conflict so the disabled
	// days reflect the server's bookings. Optional.
	Venues policies.VenueReader
	Now    func() time.Time
	Logger *slog.Logger
}

// Controller drives one booking widget: range selection, guest count,
// pricing and submission. Submissions are serialized by the Submitting state.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	venue    venues.Venue
	state    State
	selected daterange.Range
	guests   int
	quote    pricing.Quote
}

func New(cfg Config) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		cfg:    cfg,
		venue:  cfg.Venue,
		state:  StateIdle,
		guests: defaultGuests,
	}
}

// Snapshot is a read-only copy of the widget state for rendering.
type Snapshot struct {
	State    State           `json:"state"`
	Range    daterange.Range `json:"range"`
	Guests   int             `json:"guests"`
	Quote    pricing.Quote   `json:"quote"`
	VenueID  venues.VenueID  `json:"venueId"`
	CanBook  bool            `json:"canBook"`
	SignedIn bool            `json:"signedIn"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, signedIn := session.Token(c.cfg.Session)
	return Snapshot{
		State:    c.state,
		Range:    c.selected,
		Guests:   c.guests,
		Quote:    c.quote,
		VenueID:  c.venue.ID,
		CanBook:  c.state == StateRangeSelected,
		SignedIn: signedIn,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Calendar returns the availability view used to disable days in the picker.
func (c *Controller) Calendar() *availability.Calendar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return availability.NewCalendar(c.venue, c.cfg.Now())
}

// SelectRange records a stay and prices it. Degenerate ranges are ignored,
// as are selections made while a submission is in flight.
func (c *Controller) SelectRange(from, to daterange.Day) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return c.state
	}
	r := daterange.Range{From: from, To: to}
	if daterange.NightsBetween(from, to) <= 0 {
		return c.state
	}
	c.selected = r
	c.quote = pricing.ComputeTotal(c.venue.Price, r)
	c.state = StateRangeSelected
	return c.state
}

// ClearRange drops the selection and returns to Idle.
func (c *Controller) ClearRange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return
	}
	c.resetLocked(false)
}

// SetGuests stores n clamped to the venue capacity and returns the stored value.
func (c *Controller) SetGuests(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guests = c.venue.ClampGuests(n)
	return c.guests
}

// Submit books the selected stay. Every call that is not a no-op produces
// exactly one notice. Errors are returned for the caller's information only;
// the notice is how they reach the user.
func (c *Controller) Submit(ctx context.Context) (booking.Confirmation, error) {
	var zero booking.Confirmation

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return zero, ErrSubmissionInFlight
	}
	if _, ok := session.Token(c.cfg.Session); !ok {
		c.mu.Unlock()
		err := booking.NewError(booking.KindUnauthenticated, "", nil)
		c.notify(ctx, dto.ErrorNotice(err))
		return zero, err
	}
	if c.state != StateRangeSelected {
		c.mu.Unlock()
		err := booking.NewError(booking.KindInvalidDateRange, "", nil)
		c.notify(ctx, dto.ErrorNotice(err))
		return zero, err
	}
	cmd := bookingapp.SubmitBookingCommand{
		Session: c.cfg.Session,
		Request: booking.Request{
			VenueID:  c.venue.ID,
			DateFrom: c.selected.From,
			DateTo:   c.selected.To,
			Guests:   c.guests,
		},
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	conf, err := commands.Dispatch[bookingapp.SubmitBookingCommand, booking.Confirmation](ctx, c.cfg.Commands, cmd)

	c.mu.Lock()
	c.resetLocked(true)
	c.mu.Unlock()

	if err != nil {
		c.notify(ctx, dto.ErrorNotice(err))
		// A conflict means our bookings are behind; refresh before the next attempt.
		if booking.KindOf(err) == booking.KindDateRangeUnavailable {
			c.reload(ctx)
		}
		return zero, err
	}
	c.notify(ctx, dto.SuccessNotice(conf))
	c.reload(ctx)
	return conf, nil
}

func (c *Controller) resetLocked(guests bool) {
	c.selected = daterange.Range{}
	c.quote = pricing.Quote{}
	c.state = StateIdle
	if guests {
		c.guests = defaultGuests
	}
}

func (c *Controller) reload(ctx context.Context) {
	if c.cfg.Venues == nil {
		return
	}
	venue, err := c.cfg.Venues.Venue(ctx, c.venue.ID)
	if err != nil {
		c.cfg.Logger.Warn("venue reload failed", "venue_id", c.venue.ID, "error", err)
		return
	}
	c.mu.Lock()
	c.venue = venue
	c.guests = c.venue.ClampGuests(c.guests)
	c.mu.Unlock()
}

func (c *Controller) notify(ctx context.Context, n dto.Notice) {
	if c.cfg.Notifier == nil {
		return
	}
	if err := c.cfg.Notifier.Notify(ctx, n); err != nil {
		c.cfg.Logger.Warn("notice delivery failed", "level", n.Level, "kind", n.Kind, "error", err)
	}
}
