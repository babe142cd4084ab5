package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a write intent. Keys read "<aggregate>.<verb>" (booking.submit)
// and a bus holds exactly one handler per key.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc registers a plain function, mostly in tests and adapters.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd through bus and returns the handler's typed result.
// Handler errors come back untouched so callers can read booking error
// kinds from them; bus failures wrap one of the errors above with the key.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, fmt.Errorf("%w: %s", ErrNilBus, cmd.Key())
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		return zero, err
	}
	return resultAs[R](cmd.Key(), res)
}

func resultAs[R any](key string, res any) (R, error) {
	var zero R
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, key, res)
	}
	return value, nil
}
