package holidaze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"holidaze/internal/app/policies"
	"holidaze/internal/domain/booking"
	"holidaze/internal/domain/venues"
)

func TestFetchVenueMapsBookings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/holidaze/venues/v-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("_bookings") != "true" {
			t.Errorf("bookings not requested: %s", r.URL.RawQuery)
		}
		if got := r.Header.Get("X-Noroff-API-Key"); got != "key" {
			t.Errorf("unexpected api key %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"v-1","name":"Cabin","price":150,"maxGuests":4,
			"bookings":[{"id":"b-1","dateFrom":"2025-05-01T00:00:00.000Z","dateTo":"2025-05-03T00:00:00.000Z","guests":2,
			"customer":{"name":"ola"}}]},"meta":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", time.Second)
	v, err := c.FetchVenue(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if v.Name != "Cabin" || v.Price != 150 || v.MaxGuests != 4 {
		t.Fatalf("unexpected venue %+v", v)
	}
	if len(v.Bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(v.Bookings))
	}
	b := v.Bookings[0]
	if b.Range.From != "2025-05-01" || b.Range.To != "2025-05-03" || b.Customer != "ola" {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestFetchVenueNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"message":"No venue with such ID"}],"status":"Not Found","statusCode":404}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).FetchVenue(context.Background(), "missing")
	if !errors.Is(err, venues.ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
}

func TestCreateBookingSendsPayload(t *testing.T) {
	var got createBookingPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/holidaze/bookings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("unexpected authorization %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"bk-9","dateFrom":"2025-05-03T00:00:00.000Z","dateTo":"2025-05-06T00:00:00.000Z","guests":2,"created":"2025-04-20T09:00:00.000Z"},"meta":{}}`))
	}))
	defer srv.Close()

	conf, err := New(srv.URL, "key", time.Second).CreateBooking(context.Background(), "tok", booking.Request{
		VenueID:  "v-1",
		DateFrom: "2025-05-03",
		DateTo:   "2025-05-06",
		Guests:   2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.VenueID != "v-1" || got.DateFrom != "2025-05-03" || got.DateTo != "2025-05-06" || got.Guests != 2 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if conf.ID != "bk-9" || conf.DateFrom != "2025-05-03" || conf.DateTo != "2025-05-06" || conf.VenueID != "v-1" {
		t.Fatalf("unexpected confirmation %+v", conf)
	}
}

func TestCreateBookingNormalizesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   []string
	}{
		{"envelope", http.StatusConflict, `{"errors":[{"message":"Venue is already booked"}],"status":"Conflict","statusCode":409}`, []string{"Venue is already booked"}},
		{"plain text", http.StatusBadGateway, `upstream down`, []string{"upstream down"}},
		{"empty", http.StatusInternalServerError, ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "", time.Second).CreateBooking(context.Background(), "tok", booking.Request{VenueID: "v"})
			var remote policies.RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("expected RemoteError, got %v", err)
			}
			if remote.StatusCode() != tt.status {
				t.Fatalf("status = %d, want %d", remote.StatusCode(), tt.status)
			}
			if len(remote.Messages()) != len(tt.want) {
				t.Fatalf("messages = %v, want %v", remote.Messages(), tt.want)
			}
			for i := range tt.want {
				if remote.Messages()[i] != tt.want[i] {
					t.Fatalf("messages = %v, want %v", remote.Messages(), tt.want)
				}
			}
		})
	}
}

func TestClientNotConfigured(t *testing.T) {
	var c *Client
	if _, err := c.FetchVenue(context.Background(), "v"); !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("expected ErrClientNotConfigured, got %v", err)
	}
}
