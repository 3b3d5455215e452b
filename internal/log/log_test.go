package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerJSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentWorker})

	logger.InfoContext(context.Background(), "tick", FieldSubscriptionID, "abc")
	logger.DebugContext(context.Background(), "hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line above debug threshold, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec[FieldComponent] != ComponentWorker || rec[FieldSubscriptionID] != "abc" || rec["msg"] != "tick" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithSubscription("1", "Netflix", 15.99, "USD", "monthly").
		WithRequestID("").
		WithError(nil).
		WithError(errors.New("boom"))

	if f[FieldName] != "Netflix" || f[FieldError] != "boom" {
		t.Errorf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request ID should be omitted")
	}
	if got := len(f.ToSlice()); got != len(f)*2 {
		t.Errorf("ToSlice length = %d, want %d", got, len(f)*2)
	}
}

func TestMiddlewareAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})
	mw := Middleware(logger, func(context.Context) string { return "req-1" })

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("request ID missing: %s", buf.String())
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{503, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
		r := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
		sl.LogHTTPEnd(context.Background(), r, "/api/v1/dashboard", tt.status, 3, "127.0.0.1")

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rec["level"] != tt.level || rec[FieldComponent] != ComponentHTTP {
			t.Errorf("status %d: got level %v component %v", tt.status, rec["level"], rec[FieldComponent])
		}
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Errorf("Component() = %q, want unknown", l.Component())
	}
}
