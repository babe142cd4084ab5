package availability

import (
	"errors"
	"testing"
	"time"

	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/domain/venues"
)

func rng(from, to string) daterange.Range {
	return daterange.Range{From: daterange.Day(from), To: daterange.Day(to)}
}

func TestBuildDisabledDaysExcludesCheckout(t *testing.T) {
	disabled := BuildDisabledDays([]daterange.Range{rng("2025-03-01", "2025-03-05")})
	for _, day := range []daterange.Day{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04"} {
		if !disabled.Contains(day) {
			t.Errorf("expected %s to be disabled", day)
		}
	}
	if disabled.Contains("2025-03-05") {
		t.Fatal("checkout day must stay available")
	}
	if disabled.Len() != 4 {
		t.Fatalf("expected 4 disabled days, got %d", disabled.Len())
	}
}

func TestBuildDisabledDaysCheckoutCoveredByAnotherStay(t *testing.T) {
	disabled := BuildDisabledDays([]daterange.Range{
		rng("2025-03-01", "2025-03-05"),
		rng("2025-03-05", "2025-03-07"),
	})
	if !disabled.Contains("2025-03-05") {
		t.Fatal("expected back-to-back check-in day to be disabled")
	}
	if disabled.Contains("2025-03-07") {
		t.Fatal("expected final checkout day to be free")
	}
	sorted := disabled.Sorted()
	if len(sorted) != 6 || sorted[0] != "2025-03-01" || sorted[5] != "2025-03-06" {
		t.Fatalf("unexpected sorted days: %v", sorted)
	}
}

func TestBuildDisabledDaysEmpty(t *testing.T) {
	if got := BuildDisabledDays(nil); got.Len() != 0 {
		t.Fatalf("expected empty set, got %v", got.Sorted())
	}
	if !IsRangeAvailable(rng("2025-03-01", "2025-03-02"), nil) {
		t.Fatal("expected any positive range to be available without bookings")
	}
}

func TestIsRangeAvailable(t *testing.T) {
	bookings := []daterange.Range{rng("2025-05-01", "2025-05-03"), rng("2025-05-10", "2025-05-12")}
	tests := []struct {
		name string
		r    daterange.Range
		want bool
	}{
		{"starts on checkout", rng("2025-05-03", "2025-05-06"), true},
		{"ends on check-in", rng("2025-05-06", "2025-05-10"), true},
		{"overlaps first stay", rng("2025-05-02", "2025-05-04"), false},
		{"spans second stay", rng("2025-05-08", "2025-05-14"), false},
		{"zero length", rng("2025-05-20", "2025-05-20"), false},
		{"zero length inside stay", rng("2025-05-01", "2025-05-01"), false},
		{"inverted", rng("2025-05-22", "2025-05-20"), false},
		{"missing range", daterange.Range{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRangeAvailable(tt.r, bookings); got != tt.want {
				t.Fatalf("IsRangeAvailable(%s) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestIsRangeAvailableMatchesDisabledDays(t *testing.T) {
	bookings := []daterange.Range{rng("2025-05-01", "2025-05-03"), rng("2025-05-07", "2025-05-09")}
	disabled := BuildDisabledDays(bookings)
	start := daterange.Day("2025-04-28")
	for i := 0; i < 14; i++ {
		from := start.AddDays(i)
		for n := 1; n <= 5; n++ {
			r := daterange.Range{From: from, To: from.AddDays(n)}
			intersects := false
			for day := range r.Days() {
				if disabled.Contains(day) {
					intersects = true
					break
				}
			}
			if got := IsRangeAvailable(r, bookings); got == intersects {
				t.Fatalf("range %s: available=%v but intersects disabled days=%v", r, got, intersects)
			}
		}
	}
}

func TestIsSelectable(t *testing.T) {
	disabled := BuildDisabledDays([]daterange.Range{rng("2025-05-01", "2025-05-03")})
	today := daterange.Day("2025-04-30")
	tests := []struct {
		day  daterange.Day
		want bool
	}{
		{"2025-04-29", false},
		{"2025-04-30", true},
		{"2025-05-01", false},
		{"2025-05-02", false},
		{"2025-05-03", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSelectable(tt.day, today, disabled); got != tt.want {
			t.Errorf("IsSelectable(%q) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestCalendarReserveRecordsOverbooking(t *testing.T) {
	venue := venues.Venue{
		ID:        "venue-1",
		Price:     150,
		MaxGuests: 4,
		Bookings:  []venues.Booking{{ID: "b-1", Range: rng("2025-05-01", "2025-05-03")}},
	}
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	cal := NewCalendar(venue, now)
	if cal.Today != "2025-04-20" {
		t.Fatalf("expected today 2025-04-20, got %s", cal.Today)
	}
	if err := cal.Reserve(rng("2025-05-03", "2025-05-06"), now); err != nil {
		t.Fatalf("expected touching range to be reservable, got %v", err)
	}
	if cal.Len() != 0 {
		t.Fatal("no event expected for an accepted range")
	}
	err := cal.Reserve(rng("2025-05-02", "2025-05-04"), now)
	if !errors.Is(err, ErrOverlappingRange) {
		t.Fatalf("expected ErrOverlappingRange, got %v", err)
	}
	evs := cal.Drain()
	if len(evs) != 1 || evs[0].EventName() != "calendar.overbooking_prevented" {
		t.Fatalf("expected one overbooking event, got %v", evs)
	}
	if err := cal.Reserve(rng("2025-05-04", "2025-05-04"), now); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
