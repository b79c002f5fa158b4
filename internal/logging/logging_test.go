package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captureLogOutput points the global logger at a buffer for the duration of f.
func captureLogOutput(t *testing.T, level Level, format Format, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	InitLoggerTo(&buf, level, format)
	defer InitLogger(LevelInfo, FormatText)
	f()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestInitLoggerLevels(t *testing.T) {
	out := captureLogOutput(t, LevelWarn, FormatJSON, func() {
		Info("hidden")
		Warn("shown", "k", "v")
	})
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not one JSON line: %v\n%s", err, out)
	}
	if entry["msg"] != "shown" || entry["k"] != "v" {
		t.Errorf("entry = %v, want msg=shown k=v", entry)
	}
	if _, ok := entry["time"].(string); !ok {
		t.Errorf("time attribute missing or not a string: %v", entry["time"])
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "run-1")
	if got := GetRequestID(ctx); got != "run-1" {
		t.Errorf("GetRequestID() = %q, want run-1", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q, want empty", got)
	}

	out := captureLogOutput(t, LevelDebug, FormatText, func() {
		InfoContext(ctx, "hello")
	})
	if !strings.Contains(out, "request_id=run-1") {
		t.Errorf("context logger did not attach request_id: %s", out)
	}
}

func TestDomainHelpers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "r")
	out := captureLogOutput(t, LevelDebug, FormatText, func() {
		PatternPairs(ctx, "テーブル/SSR", 40, 3)
		TargetCollected(ctx, 9, 4, true)
		Diagnostic(ctx, "pattern", errors.New("bad"))
		FileEvent("a.txt", "WRITE")
	})
	for _, want := range []string{"pattern_pairs", "pairs=3", "target_collected", "line=10", "limit_exceeded=true", "diagnostic", "error=bad", "file_event"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCombinedMiddleware(t *testing.T) {
	var seen string
	h := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	out := captureLogOutput(t, LevelInfo, FormatText, func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Header().Get("X-Request-ID") != seen || seen == "" {
			t.Errorf("X-Request-ID = %q, context ID = %q", rec.Header().Get("X-Request-ID"), seen)
		}
	})
	if !strings.Contains(out, "status_code=418") {
		t.Errorf("request log missing status: %s", out)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	h.ServeHTTP(rec, req)
	if seen != "given" {
		t.Errorf("incoming X-Request-ID not honoured: %q", seen)
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b || len(a) != 36 {
		t.Errorf("NewRunID() = %q, %q", a, b)
	}
}
