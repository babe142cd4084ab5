package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"holidaze/internal/domain/shared/daterange"
	"holidaze/internal/infra/config"
	"holidaze/internal/infra/obs"
)

func demoEnv(t *testing.T) string {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":          "test",
		"HOLIDAZE_API_URL": "memory",
		"CACHE_BACKEND":    "memory",
		"MONGO_URI":        "",
		"KAFKA_BROKERS":    "",
		"HOLIDAZE_TOKEN":   "",
	} {
		t.Setenv(k, v)
	}
	return filepath.Join(t.TempDir(), "none.env")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	env := demoEnv(t)
	out, err := run(t, "quote", "demo-city-loft", "--from", "2030-01-01", "--to", "2030-01-03", "--env-file", env)
	if err != nil {
		t.Fatalf("quote: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"nights": 2`) || !strings.Contains(out, `"total": 191`) {
		t.Fatalf("unexpected quote output:\n%s", out)
	}
}

func TestBookCommand(t *testing.T) {
	env := demoEnv(t)
	today := daterange.Today(time.Now())
	from, to := today.AddDays(20).String(), today.AddDays(22).String()

	out, err := run(t, "book", "demo-fjord-cabin", "--from", from, "--to", to, "--guests", "9", "--token", "tok", "--env-file", env)
	if err != nil {
		t.Fatalf("book: %v\n%s", err, out)
	}
	if !strings.Contains(out, "guests adjusted to 4") || !strings.Contains(out, "Booking confirmed") {
		t.Fatalf("unexpected book output:\n%s", out)
	}
}

func TestBookCommandRequiresToken(t *testing.T) {
	env := demoEnv(t)
	today := daterange.Today(time.Now())
	out, err := run(t, "book", "demo-fjord-cabin", "--from", today.AddDays(20).String(), "--to", today.AddDays(21).String(), "--env-file", env)
	if err == nil {
		t.Fatalf("expected failure without a token:\n%s", out)
	}
	if !strings.Contains(out, "UNAUTHENTICATED") {
		t.Fatalf("expected an unauthenticated notice:\n%s", out)
	}
}

func TestParseStay(t *testing.T) {
	if r, err := parseStay("", "", false); err != nil || !r.IsZero() {
		t.Fatalf("optional empty stay: %v %v", r, err)
	}
	if _, err := parseStay("", "", true); err == nil {
		t.Fatal("expected error for required empty stay")
	}
	if _, err := parseStay("2030-01-01", "soon", true); err == nil {
		t.Fatal("expected error for malformed day")
	}
}

func TestBrokerWorkersWithoutRelayOpenNothing(t *testing.T) {
	app := &application{logger: obs.NewLoggerTo(io.Discard, "test")}
	cfg := config.Config{
		KafkaBrokers: []string{"127.0.0.1:1"},
		CacheBackend: config.CacheRedis,
	}
	var g errgroup.Group
	if err := startBrokerWorkers(context.Background(), &g, app, cfg); err != nil {
		t.Fatalf("start workers: %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("workers: %v", err)
	}
	if len(app.closers) != 0 {
		t.Fatalf("no kafka client should be opened without an outbox store, got %d closers", len(app.closers))
	}
}
