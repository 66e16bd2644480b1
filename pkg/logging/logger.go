package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a config or env string onto a Level.
func ParseLevel(raw string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(raw)))
	if level == "" {
		return LevelInfo, nil
	}
	if level == "warning" {
		return LevelWarn, nil
	}
	if _, ok := levelRank[level]; !ok {
		return "", fmt.Errorf("unknown log level %q", raw)
	}
	return level, nil
}

// Category represents the subsystem generating the log
type Category string

const (
	CategoryBus    Category = "bus"
	CategoryShell  Category = "shell"
	CategoryWidget Category = "widget"
	CategoryLayout Category = "layout"
	CategoryScene  Category = "scene"
	CategoryHTTP   Category = "http"
	CategoryAssets Category = "assets"
)

// Event represents a structured log event
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	EventType string         `json:"type"`
	PageID    string         `json:"page_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Message   string         `json:"message,omitempty"`
}

type sink struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	closers  []io.Closer
	minLevel Level
}

// Logger writes structured JSONL events. Loggers derived with WithPage share
// the parent's destinations and level. A nil *Logger discards everything.
type Logger struct {
	sink   *sink
	pageID string
}

// NewLogger creates a logger writing every event to w.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{sink: &sink{out: w, minLevel: LevelInfo}}
}

// File names NewFileLogger writes under its directory.
const (
	EventsFile = "events.jsonl"
	ErrorsFile = "errors.jsonl"
)

// NewFileLogger creates a logger writing events.jsonl under baseDir, with
// error-level events duplicated into errors.jsonl.
func NewFileLogger(baseDir string) (*Logger, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	eventsFile, err := os.OpenFile(
		filepath.Join(baseDir, EventsFile),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	errorFile, err := os.OpenFile(
		filepath.Join(baseDir, ErrorsFile),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		eventsFile.Close()
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}

	return &Logger{sink: &sink{
		out:      eventsFile,
		errOut:   errorFile,
		closers:  []io.Closer{eventsFile, errorFile},
		minLevel: LevelInfo,
	}}, nil
}

// Nop returns a logger that drops all events.
func Nop() *Logger {
	return NewLogger(io.Discard)
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level Level) {
	if l == nil || l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.minLevel = level
}

// WithPage returns a logger that stamps events with pageID.
func (l *Logger) WithPage(pageID string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sink: l.sink, pageID: pageID}
}

// Log writes an event to the configured destinations
func (l *Logger) Log(event Event) error {
	if l == nil || l.sink == nil {
		return nil
	}
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if levelRank[event.Level] < levelRank[s.minLevel] {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.PageID == "" {
		event.PageID = l.pageID
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if event.Level == LevelError && s.errOut != nil {
		if _, err := s.errOut.Write(data); err != nil {
			return fmt.Errorf("failed to write to error log: %w", err)
		}
	}
	return nil
}

// Debug logs a debug event
func (l *Logger) Debug(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelDebug, Category: category, EventType: eventType, Message: message, Details: details})
}

// Info logs an info event
func (l *Logger) Info(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelInfo, Category: category, EventType: eventType, Message: message, Details: details})
}

// Warn logs a warning event
func (l *Logger) Warn(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelWarn, Category: category, EventType: eventType, Message: message, Details: details})
}

// Error logs an error event
func (l *Logger) Error(category Category, eventType, message string, details map[string]any) {
	_ = l.Log(Event{Level: LevelError, Category: category, EventType: eventType, Message: message, Details: details})
}

// Close closes any files opened by NewFileLogger.
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	var errs []error
	for _, c := range l.sink.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.sink.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("errors closing log files: %v", errs)
	}
	return nil
}

// ReadRecentEvents reads the last count events from a JSONL log file.
func ReadRecentEvents(logPath string, count int) ([]Event, error) {
	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer file.Close()

	var events []Event
	decoder := json.NewDecoder(file)
	for {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			break
		}
		events = append(events, event)
	}

	if count > 0 && len(events) > count {
		events = events[len(events)-count:]
	}
	return events, nil
}
