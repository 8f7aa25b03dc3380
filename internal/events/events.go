// Package events defines build lifecycle events and the bus that fans them
// out to notification sinks. Sinks are best-effort: a failing sink is logged
// and never fails the build it reports on.
package events

import (
	"context"
	"time"

	"github.com/vk/packrig/internal/ctxlog"
)

// Type identifies a build lifecycle event.
type Type string

const (
	RunStarted   Type = "run_started"
	RunFinished  Type = "run_finished"
	StepStarted  Type = "step_started"
	StepFinished Type = "step_finished"
)

// Step/run statuses carried in events.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Event is a single build lifecycle notification.
type Event struct {
	Type       Type      `json:"type"`
	RunID      string    `json:"run_id"`
	Bundle     string    `json:"bundle"`
	Step       string    `json:"step,omitempty"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Time       time.Time `json:"time"`
}

// Publisher is the side of the bus the pipeline sees.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Sink receives events. Implementations must be safe to call sequentially
// from a single goroutine.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
	Close() error
}

// Bus fans each published event out to every sink.
type Bus struct {
	sinks []Sink
}

// NewBus creates a bus over the given sinks.
func NewBus(sinks ...Sink) *Bus {
	return &Bus{sinks: sinks}
}

// Publish stamps the event and delivers it to every sink. Sink errors are
// logged and swallowed.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	logger := ctxlog.FromContext(ctx)
	for _, sink := range b.sinks {
		if err := sink.Send(ctx, ev); err != nil {
			logger.Warn("Notification sink failed.", "sink", sink.Name(), "event", string(ev.Type), "error", err)
		}
	}
}

// Close shuts every sink down, logging failures.
func (b *Bus) Close(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, sink := range b.sinks {
		if err := sink.Close(); err != nil {
			logger.Warn("Failed to close notification sink.", "sink", sink.Name(), "error", err)
		}
	}
}
