package obs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if seen != "req-1" || w.Header().Get(RequestIDHeader) != "req-1" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestReadyzReportsFailingChecks(t *testing.T) {
	h := HealthHandlers{Checks: map[string]Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
		"mongo": func(context.Context) error { return nil },
	}}
	r := gin.New()
	r.GET("/readyz", h.Readyz)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "redis") {
		t.Fatalf("unexpected readyz %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "mongo") {
		t.Fatalf("healthy check reported as failing: %s", w.Body.String())
	}
}

func TestNewLoggerJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "prod").Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Fatalf("expected json output, got %s", buf.String())
	}
}
