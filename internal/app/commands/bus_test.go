package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"holidaze/internal/domain/booking"
)

type holdCommand struct{ venue string }

func (holdCommand) Key() string { return "booking.hold" }

func TestDispatchTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	Register(bus, HandlerFunc[holdCommand, booking.Confirmation](func(_ context.Context, cmd holdCommand) (booking.Confirmation, error) {
		return booking.Confirmation{ID: "bk-" + cmd.venue}, nil
	}))

	conf, err := Dispatch[holdCommand, booking.Confirmation](context.Background(), bus, holdCommand{venue: "v1"})
	if err != nil || conf.ID != "bk-v1" {
		t.Fatalf("unexpected result %+v, %v", conf, err)
	}
	if keys := bus.Keys(); len(keys) != 1 || keys[0] != "booking.hold" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestDispatchKeepsDomainErrors(t *testing.T) {
	bus := NewInMemoryBus()
	Register(bus, HandlerFunc[holdCommand, booking.Confirmation](func(context.Context, holdCommand) (booking.Confirmation, error) {
		return booking.Confirmation{}, booking.NewError(booking.KindDateRangeUnavailable, "", nil)
	}))

	_, err := Dispatch[holdCommand, booking.Confirmation](context.Background(), bus, holdCommand{})
	if !errors.Is(err, booking.ErrDateRangeUnavailable) || booking.KindOf(err) != booking.KindDateRangeUnavailable {
		t.Fatalf("expected the handler's booking error, got %v", err)
	}
}

func TestDispatchBusFailures(t *testing.T) {
	ctx := context.Background()

	if _, err := Dispatch[holdCommand, booking.Confirmation](ctx, nil, holdCommand{}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("expected ErrNilBus, got %v", err)
	}

	bus := NewInMemoryBus()
	if _, err := Dispatch[holdCommand, booking.Confirmation](ctx, bus, holdCommand{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}

	Register(bus, HandlerFunc[holdCommand, string](func(context.Context, holdCommand) (string, error) {
		return "not a confirmation", nil
	}))
	_, err := Dispatch[holdCommand, booking.Confirmation](ctx, bus, holdCommand{})
	if !errors.Is(err, ErrResultType) || !strings.Contains(err.Error(), "booking.hold returned string") {
		t.Fatalf("expected a keyed result type error, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[holdCommand, string](func(context.Context, holdCommand) (string, error) { return "", nil })
	Register(bus, h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate registration")
		}
	}()
	Register(bus, h)
}
