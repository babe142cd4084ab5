package availability

import (
	"time"

	"holidaze/internal/domain/shared/daterange"
)

type OverbookingPrevented struct {
	VenueID string          `json:"venueId"`
	Range   daterange.Range `json:"range"`
	At      time.Time       `json:"at"`
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return e.VenueID }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
