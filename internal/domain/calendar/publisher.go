// Package calendar hands built shift events to an external calendar.
// Publishing is create-only: existing events are never updated or removed.
package calendar

import (
	"context"
	"log/slog"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Result summarizes a publish call.
type Result struct {
	Created int
	IDs     []string
}

// Publisher creates calendar entries for shift events.
type Publisher interface {
	Publish(ctx context.Context, events []roster.ShiftEvent) (*Result, error)
}

// LogPublisher only logs the events. Used when no calendar endpoint is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that writes events to the log.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events []roster.ShiftEvent) (*Result, error) {
	for _, e := range events {
		p.logger.Info("calendar event",
			slog.String("date", e.DateString()),
			slog.String("start", e.StartString()),
			slog.String("end", e.EndString()),
			slog.Bool("end_plus1", e.EndPlus1),
			slog.String("code", e.Code),
		)
	}
	return &Result{Created: len(events)}, nil
}
