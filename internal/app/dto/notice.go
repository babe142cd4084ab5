package dto

import "holidaze/internal/domain/booking"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message shown once to the user after a booking attempt.
type Notice struct {
	Level     NoticeLevel  `json:"level"`
	Kind      booking.Kind `json:"kind,omitempty"`
	Message   string       `json:"message"`
	BookingID string       `json:"bookingId,omitempty"`
}

func SuccessNotice(c booking.Confirmation) Notice {
	return Notice{Level: NoticeSuccess, Message: "Booking confirmed", BookingID: c.ID}
}

func ErrorNotice(err error) Notice {
	return Notice{Level: NoticeError, Kind: booking.KindOf(err), Message: booking.MessageOf(err)}
}
