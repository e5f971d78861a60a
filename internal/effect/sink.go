// Package effect defines the presentation boundary for the codex components.
//
// The dispatcher and gate never render anything themselves. They report
// shatters and unlocks to a Sink, which a front end may turn into a flash,
// a log line, or nothing at all.
package effect

import (
	"io"
	"log/slog"
	"sync"
)

// Unlock categories passed to Sink.OnUnlock.
const (
	CategoryCode   = "code"
	CategoryMarker = "marker"
	CategoryPhrase = "phrase"
)

// Sink receives transient effect notifications.
//
// Calls are made unconditionally and synchronously. Implementations must not
// block for long and must not call back into the component that notified them.
type Sink interface {
	// OnShatter is called when a dispatched item trips the denylist.
	OnShatter(itemID string)

	// OnUnlock is called after a successful unlock of the given category.
	OnUnlock(category string)
}

// Nop discards every notification. It is the default for headless use.
type Nop struct{}

func (Nop) OnShatter(string) {}
func (Nop) OnUnlock(string)  {}

// Event is a single notification captured by a Recorder.
type Event struct {
	Kind  string `json:"kind"`  // "shatter" or "unlock"
	Value string `json:"value"` // item id for shatters, category for unlocks
}

// Recorder captures notifications in order. Used by tests and the scenario
// harness.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnShatter(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "shatter", Value: itemID})
}

func (r *Recorder) OnUnlock(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "unlock", Value: category})
}

// Events returns a copy of the captured notifications.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// unlockColors mirrors the flash colour each category used in the browser.
var unlockColors = map[string]string{
	CategoryCode:   "#87f9ff",
	CategoryMarker: "#ff4d88",
	CategoryPhrase: "#34d399",
}

// Color returns the display colour for an unlock category, falling back to
// the code colour for unknown categories.
func Color(category string) string {
	if c, ok := unlockColors[category]; ok {
		return c
	}
	return unlockColors[CategoryCode]
}

// LogSink writes each notification as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging through logger. A nil logger discards.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) OnShatter(itemID string) {
	s.logger.Info("shatter effect", "item", itemID, "color", "#ff4d88")
}

func (s *LogSink) OnUnlock(category string) {
	s.logger.Info("unlock effect", "category", category, "color", Color(category))
}
