package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a failed submission for the user-facing notice.
type Kind string

const (
	KindUnauthenticated      Kind = "UNAUTHENTICATED"
	KindInvalidDateRange     Kind = "INVALID_DATE_RANGE"
	KindInvalidGuestCount    Kind = "INVALID_GUEST_COUNT"
	KindDateRangeUnavailable Kind = "DATE_RANGE_UNAVAILABLE"
	KindBookingFailed        Kind = "BOOKING_FAILED"
)

var (
	ErrUnauthenticated      = errors.New("booking: sign in to book this venue")
	ErrInvalidDateRange     = errors.New("booking: select a check-in and a later check-out date")
	ErrInvalidGuestCount    = errors.New("booking: guest count is outside the venue capacity")
	ErrDateRangeUnavailable = errors.New("booking: the selected dates are not available, pick different dates")
	ErrBookingFailed        = errors.New("booking: booking failed")
)

var sentinels = map[Kind]error{
	KindUnauthenticated:      ErrUnauthenticated,
	KindInvalidDateRange:     ErrInvalidDateRange,
	KindInvalidGuestCount:    ErrInvalidGuestCount,
	KindDateRangeUnavailable: ErrDateRangeUnavailable,
	KindBookingFailed:        ErrBookingFailed,
}

// Error is a submission failure. Message is safe to show to the user; Err
// keeps the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind, so callers can write
// errors.Is(err, booking.ErrDateRangeUnavailable).
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// NewError builds an Error whose message defaults to the kind's sentinel text.
func NewError(kind Kind, message string, cause error) *Error {
	if message == "" {
		if s, ok := sentinels[kind]; ok {
			message = s.Error()
		}
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of err; anything unclassified is BookingFailed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	for kind, s := range sentinels {
		if errors.Is(err, s) {
			return kind
		}
	}
	return KindBookingFailed
}

// MessageOf returns the user-facing text for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var be *Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return ErrBookingFailed.Error()
}
