package policies

import (
	"context"

	"holidaze/internal/app/dto"
)

// Notifier delivers user-facing notices raised by the booking widget.
type Notifier interface {
	Notify(ctx context.Context, notice dto.Notice) error
}
