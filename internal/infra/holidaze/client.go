package holidaze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"holidaze/internal/app/policies"
	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

const (
	DefaultBaseURL = "https://v2.api.noroff.dev"
	apiKeyHeader   = "X-Noroff-API-Key"
	maxErrorBody   = 64 << 10
)

var ErrClientNotConfigured = errors.New("holidaze: http client or base url missing")

// Client talks to the Holidaze REST API. It is safe for concurrent use.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
	Logger  *slog.Logger
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
	}
}

// APIError is a non-2xx response from the API, normalized from its
// {errors, status, statusCode} envelope.
type APIError struct {
	Status int
	Msgs   []string
}

func (e *APIError) Error() string {
	if len(e.Msgs) == 0 {
		return fmt.Sprintf("holidaze: api returned status %d", e.Status)
	}
	return fmt.Sprintf("holidaze: api returned status %d: %s", e.Status, strings.Join(e.Msgs, "; "))
}

func (e *APIError) StatusCode() int    { return e.Status }
func (e *APIError) Messages() []string { return e.Msgs }

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

type venueDTO struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	MaxGuests int          `json:"maxGuests"`
	Bookings  []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID       string    `json:"id"`
	DateFrom string    `json:"dateFrom"`
	DateTo   string    `json:"dateTo"`
	Guests   int       `json:"guests"`
	Created  time.Time `json:"created"`
	Customer *struct {
		Name string `json:"name"`
	} `json:"customer,omitempty"`
}

type createBookingPayload struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
	VenueID  string `json:"venueId"`
}

// FetchVenue loads a venue with its bookings embedded.
func (c *Client) FetchVenue(ctx context.Context, id venues.VenueID) (venues.Venue, error) {
	var zero venues.Venue
	if id == "" {
		return zero, venues.ErrVenueNotFound
	}
	path := "/holidaze/venues/" + url.PathEscape(string(id)) + "?_bookings=true"
	var out envelope[venueDTO]
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return zero, fmt.Errorf("%w: %s", venues.ErrVenueNotFound, id)
		}
		return zero, err
	}
	return mapVenue(out.Data)
}

// CreateBooking posts a booking on behalf of the token's owner.
func (c *Client) CreateBooking(ctx context.Context, token string, req booking.Request) (booking.Confirmation, error) {
	var zero booking.Confirmation
	payload := createBookingPayload{
		DateFrom: req.DateFrom.String(),
		DateTo:   req.DateTo.String(),
		Guests:   req.Guests,
		VenueID:  string(req.VenueID),
	}
	var out envelope[bookingDTO]
	if err := c.do(ctx, http.MethodPost, "/holidaze/bookings", token, payload, &out); err != nil {
		return zero, err
	}
	conf := booking.Confirmation{
		ID:      out.Data.ID,
		VenueID: req.VenueID,
		Guests:  out.Data.Guests,
		Created: out.Data.Created,
	}
	var err error
	if conf.DateFrom, err = daterange.ParseDay(out.Data.DateFrom); err != nil {
		return zero, fmt.Errorf("holidaze: booking %s dateFrom: %w", out.Data.ID, err)
	}
	if conf.DateTo, err = daterange.ParseDay(out.Data.DateTo); err != nil {
		return zero, fmt.Errorf("holidaze: booking %s dateTo: %w", out.Data.ID, err)
	}
	return conf, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	if c == nil || c.HTTP == nil || c.BaseURL == "" {
		return ErrClientNotConfigured
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("holidaze: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	if c.APIKey != "" {
		request.Header.Set(apiKeyHeader, c.APIKey)
	}

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("holidaze request failed", method, path, err)
		return fmt.Errorf("holidaze: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		c.logError("holidaze returned error", method, path, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("holidaze: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 512 {
			apiErr.Msgs = []string{text}
		}
		return apiErr
	}
	for _, e := range env.Errors {
		if msg := strings.TrimSpace(e.Message); msg != "" {
			apiErr.Msgs = append(apiErr.Msgs, msg)
		}
	}
	return apiErr
}

func mapVenue(dto venueDTO) (venues.Venue, error) {
	v := venues.Venue{
		ID:        venues.VenueID(dto.ID),
		Name:      dto.Name,
		Price:     dto.Price,
		MaxGuests: dto.MaxGuests,
		Bookings:  make([]venues.Booking, 0, len(dto.Bookings)),
	}
	for _, b := range dto.Bookings {
		from, err := daterange.ParseDay(b.DateFrom)
		if err != nil {
			return venues.Venue{}, fmt.Errorf("holidaze: venue %s booking %s dateFrom: %w", dto.ID, b.ID, err)
		}
		to, err := daterange.ParseDay(b.DateTo)
		if err != nil {
			return venues.Venue{}, fmt.Errorf("holidaze: venue %s booking %s dateTo: %w", dto.ID, b.ID, err)
		}
		booked := venues.Booking{ID: b.ID, Range: daterange.Range{From: from, To: to}, Guests: b.Guests}
		if b.Customer != nil {
			booked.Customer = b.Customer.Name
		}
		v.Bookings = append(v.Bookings, booked)
	}
	return v, nil
}

func (c *Client) logError(msg, method, path string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "method", method, "path", path, "error", err)
}

var (
	_ policies.VenueSource = (*Client)(nil)
	_ policies.BookingAPI  = (*Client)(nil)
	_ policies.RemoteError = (*APIError)(nil)
)
