package pricing

import (
	"holidaze/internal/domain/shared/daterange"
)

// Fee is an extra charge on top of the nightly subtotal. None are modeled yet;
// the slice is carried so the breakdown shape is stable.
type Fee struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Tax struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Quote is the price of a stay in the single display currency. No rounding is
// applied here; formatting happens at render time.
type Quote struct {
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"pricePerNight"`
	Subtotal      float64 `json:"subtotal"`
	Fees          []Fee   `json:"fees"`
	Taxes         []Tax   `json:"taxes"`
	Total         float64 `json:"total"`
}

// ComputeTotal prices r at pricePerNight. A missing or degenerate range
// yields a zero quote.
func ComputeTotal(pricePerNight float64, r daterange.Range) Quote {
	if pricePerNight < 0 {
		pricePerNight = 0
	}
	q := Quote{
		Nights:        daterange.NightsBetween(r.From, r.To),
		PricePerNight: pricePerNight,
		Fees:          []Fee{},
		Taxes:         []Tax{},
	}
	q.Recalculate()
	return q
}

// Recalculate derives Subtotal and Total from the other fields.
func (q *Quote) Recalculate() {
	if q.Nights < 0 {
		q.Nights = 0
	}
	q.Subtotal = float64(q.Nights) * q.PricePerNight
	total := q.Subtotal
	if q.Nights > 0 {
		for _, fee := range q.Fees {
			total += fee.Amount
		}
		for _, tax := range q.Taxes {
			total += tax.Amount
		}
	}
	if total < 0 {
		total = 0
	}
	q.Total = total
}

func (q Quote) IsZero() bool {
	return q.Nights == 0 && q.Total == 0
}
