package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Debug(CategoryWidget, "widget.mounted", "hidden", nil)
	logger.Info(CategoryWidget, "widget.mounted", "visible", map[string]any{"widget": "project-manifesto"})

	events := decodeLines(t, &buf)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Message != "visible" || events[0].Details["widget"] != "project-manifesto" {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("timestamp should be filled in")
	}

	logger.SetMinLevel(LevelDebug)
	logger.Debug(CategoryLayout, "layout.applied", "now visible", nil)
	if got := decodeLines(t, &buf); len(got) != 2 {
		t.Fatalf("expected debug event after SetMinLevel, got %d events", len(got))
	}
}

func TestWithPageStampsEvents(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger(&buf)
	page := root.WithPage("01HPAGE")

	page.Warn(CategoryWidget, "widget.grid_missing", "grid container absent", nil)
	root.Info(CategoryHTTP, "http.start", "listening", nil)

	events := decodeLines(t, &buf)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].PageID != "01HPAGE" {
		t.Fatalf("page logger should stamp page id, got %q", events[0].PageID)
	}
	if events[1].PageID != "" {
		t.Fatalf("root logger should not stamp page id, got %q", events[1].PageID)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info(CategoryShell, "shell.mounted", "noop", nil)
	logger.SetMinLevel(LevelDebug)
	if logger.WithPage("x") != nil {
		t.Fatal("WithPage on nil logger should stay nil")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close on nil logger: %v", err)
	}
}

func TestFileLoggerWritesErrorLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewFileLogger(dir)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	logger.Info(CategoryHTTP, "http.start", "listening", nil)
	logger.Error(CategoryHTTP, "http.failed", "boom", nil)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	all, err := ReadRecentEvents(filepath.Join(dir, "events.jsonl"), 10)
	if err != nil {
		t.Fatalf("ReadRecentEvents: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}

	errs, err := ReadRecentEvents(filepath.Join(dir, "errors.jsonl"), 10)
	if err != nil {
		t.Fatalf("ReadRecentEvents errors: %v", err)
	}
	if len(errs) != 1 || errs[0].EventType != "http.failed" {
		t.Fatalf("unexpected error log contents: %+v", errs)
	}

	last, err := ReadRecentEvents(filepath.Join(dir, "events.jsonl"), 1)
	if err != nil {
		t.Fatalf("ReadRecentEvents last: %v", err)
	}
	if len(last) != 1 || last[0].Level != LevelError {
		t.Fatalf("expected only the last event, got %+v", last)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        LevelInfo,
		"DEBUG":   LevelDebug,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
