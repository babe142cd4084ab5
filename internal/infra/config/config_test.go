package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"APP_ENV", "HTTP_ADDR", "HOLIDAZE_API_URL", "HOLIDAZE_API_KEY", "HOLIDAZE_API_TIMEOUT",
	"CACHE_BACKEND", "CACHE_FRESHNESS", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"MONGO_URI", "MONGO_DB", "KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "KAFKA_GROUP_ID",
	"OUTBOX_POLL_INTERVAL", "RETRY_BACKOFF",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.CacheBackend != CacheMemory || cfg.CacheFreshness != 30*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.APIURL != "https://v2.api.noroff.dev" || cfg.DemoAPI() {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[2] != 30*time.Second {
		t.Fatalf("unexpected backoff %v", cfg.RetryBackoff)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOLIDAZE_API_URL", "memory")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MONGO_URI", "mongodb://localhost")
	t.Setenv("CACHE_FRESHNESS", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.DemoAPI() || cfg.CacheBackend != CacheRedis || cfg.RedisDB != 2 || cfg.CacheFreshness != time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CACHE_BACKEND", "memcached"},
		{"CACHE_FRESHNESS", "soon"},
		{"CACHE_FRESHNESS", "-1s"},
		{"REDIS_DB", "zero"},
		{"RETRY_BACKOFF", "1s,later"},
		{"KAFKA_BROKERS", "k1:9092"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HTTP_ADDR")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("expected .env value, got %q", cfg.HTTPAddr)
	}
}
