package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mise"
)

// Ensure LoggingStrategy implements mise.Strategy.
var _ mise.Strategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps a Strategy with debug logging of each attempt.
type LoggingStrategy struct {
	next   mise.Strategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next mise.Strategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Source delegates to the wrapped strategy.
func (s *LoggingStrategy) Source() mise.Source {
	return s.next.Source()
}

// Extract logs whether the strategy produced a candidate.
func (s *LoggingStrategy) Extract(ctx context.Context, page *mise.Page) (d *mise.RecipeDraft, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"source", s.next.Source(),
			"url", page.URL,
			"rendered", page.Rendered,
			"candidate", d != nil,
			"duration", time.Since(begin),
		}
		if d != nil {
			attrs = append(attrs, "ingredients", len(d.Ingredients), "steps", len(d.Instructions))
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		s.logger.Debug("strategy", attrs...)
	}(time.Now())
	return s.next.Extract(ctx, page)
}

// LogStrategies wraps every strategy in a LoggingStrategy.
func LogStrategies(strategies []mise.Strategy, logger *slog.Logger) []mise.Strategy {
	out := make([]mise.Strategy, len(strategies))
	for i, s := range strategies {
		out[i] = NewLoggingStrategy(s, logger)
	}
	return out
}
