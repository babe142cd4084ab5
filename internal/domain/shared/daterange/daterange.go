package daterange

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

const (
	dayLayout     = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// MaxStayNights is the longest stay a Range may span.
const MaxStayNights = 365

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDay   = errors.New("daterange: invalid calendar day")
	// ErrStayTooLong also matches ErrInvalidRange.
	ErrStayTooLong = fmt.Errorf("%w: stay exceeds %d nights", ErrInvalidRange, MaxStayNights)
)

// Day is a calendar day in canonical YYYY-MM-DD form. All comparisons and set
// membership go through the canonical string, never through time.Time.
type Day string

// FromTime returns the calendar day t falls on in its own location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d))
}

// Today returns the current local calendar day.
func Today(now time.Time) Day {
	return FromTime(now)
}

// ParseDay accepts YYYY-MM-DD or an RFC 3339 timestamp. Timestamps keep the
// date as written, so "2025-05-01T00:00:00.000Z" is 2025-05-01.
func ParseDay(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return FromTime(t), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, raw)
}

// MustParseDay panics on malformed input; meant for fixtures and tests.
func MustParseDay(raw string) Day {
	d, err := ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) String() string { return string(d) }

func (d Day) IsZero() bool { return d == "" }

// Valid reports whether d is a well-formed canonical day.
func (d Day) Valid() bool {
	_, ok := d.midnight()
	return ok
}

// Before compares canonical strings; both days must be valid.
func (d Day) Before(other Day) bool { return d < other }

func (d Day) After(other Day) bool { return d > other }

// AddDays moves d by n calendar days. Arithmetic runs on UTC midnight so no
// DST transition can skip or repeat a day.
func (d Day) AddDays(n int) Day {
	t, ok := d.midnight()
	if !ok {
		return d
	}
	return FromTime(t.AddDate(0, 0, n))
}

func (d Day) midnight() (time.Time, bool) {
	if len(d) != len(dayLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayLayout, string(d), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

// NightsBetween is the whole number of nights from one day to another,
// clamped to zero.
func NightsBetween(from, to Day) int {
	start, ok := from.midnight()
	if !ok {
		return 0
	}
	end, ok := to.midnight()
	if !ok {
		return 0
	}
	// Both ends are UTC midnights, so the difference is a whole number of days.
	// Unix seconds avoid the ~292 year ceiling of time.Duration.
	nights := (end.Unix() - start.Unix()) / secondsPerDay
	if nights < 0 {
		return 0
	}
	return int(nights)
}

// Expand yields every day in [from, to).
func Expand(from, to Day) iter.Seq[Day] {
	return func(yield func(Day) bool) {
		if !from.Valid() || !to.Valid() {
			return
		}
		for day := from; day.Before(to); day = day.AddDays(1) {
			if !yield(day) {
				return
			}
		}
	}
}

// Days is the eager form of Expand.
func Days(from, to Day) []Day {
	out := make([]Day, 0, NightsBetween(from, to))
	for day := range Expand(from, to) {
		out = append(out, day)
	}
	return out
}

// Overlaps reports whether [aFrom, aTo) and [bFrom, bTo) share a night.
// Touching intervals, where one checkout equals the other's check-in, do not.
func Overlaps(aFrom, aTo, bFrom, bTo Day) bool {
	return aFrom < bTo && bFrom < aTo
}

// Range represents a half-open interval [From, To). To is the checkout day.
type Range struct {
	From Day `json:"dateFrom"`
	To   Day `json:"dateTo"`
}

func New(from, to Day) (Range, error) {
	r := Range{From: from, To: to}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func (r Range) Validate() error {
	if !r.From.Valid() || !r.To.Valid() {
		return ErrInvalidRange
	}
	nights := r.Nights()
	if nights <= 0 {
		return ErrInvalidRange
	}
	if nights > MaxStayNights {
		return ErrStayTooLong
	}
	return nil
}

func (r Range) Nights() int {
	return NightsBetween(r.From, r.To)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.From, r.To, other.From, other.To)
}

func (r Range) Contains(day Day) bool {
	return !day.Before(r.From) && day.Before(r.To)
}

func (r Range) Days() iter.Seq[Day] {
	return Expand(r.From, r.To)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.From, r.To)
}
