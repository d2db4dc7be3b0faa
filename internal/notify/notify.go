// Package notify delivers self-contained event records to human-facing sinks.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Source identifies this monitor in emitted records.
const Source = "healmon"

// Event is one append-only notification record. Records are self-contained
// and replay-safe: appending the same record twice does not corrupt history.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
}

// NewEvent builds an event for the given message, stamped now.
func NewEvent(message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Message:   message,
		Source:    Source,
	}
}

// Notifier delivers one event to a sink.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi fans one event out to several sinks. Sink failures are logged and do
// not stop delivery to the remaining sinks.
type Multi struct {
	logger *slog.Logger
	sinks  []Notifier
}

// NewMulti creates a fan-out notifier over the given sinks.
func NewMulti(logger *slog.Logger, sinks ...Notifier) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{logger: logger, sinks: sinks}
}

// Notify delivers the event to every sink, returning nil regardless of
// individual sink failures.
func (m *Multi) Notify(ctx context.Context, event Event) error {
	for _, sink := range m.sinks {
		if err := sink.Notify(ctx, event); err != nil {
			m.logger.Warn("notification sink failed", slog.Any("error", err))
		}
	}
	return nil
}
