package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTelemetryLoggerWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTelemetryLogger(&buf)

	long := strings.Repeat("a", 300)
	if err := logger.Write(Candidate{Timestamp: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC), Method: "writeText", Text: long}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := logger.Write(Candidate{Method: "copyEvent", Text: "short"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var parsed Candidate
	if err := json.Unmarshal([]byte(lines[0]), &parsed); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(parsed.Text) != maxEvidence {
		t.Fatalf("expected text length %d, got %d", maxEvidence, len(parsed.Text))
	}
	if parsed.Length != 300 {
		t.Fatalf("expected original length 300, got %d", parsed.Length)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	Component(logger, "test").Info("hidden")
	Component(logger, "test").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info suppressed at warn level, got %q", out)
	}
	if !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("expected component field, got %q", out)
	}

	if _, err := New(&buf, "loud", "text"); err == nil {
		t.Fatal("expected invalid level error")
	}
	if _, err := New(&buf, "info", "xml"); err == nil {
		t.Fatal("expected invalid format error")
	}
}
