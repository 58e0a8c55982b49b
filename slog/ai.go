package slog

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/mise"
)

// Ensure LoggingAIExtractor implements mise.AIExtractor.
var _ mise.AIExtractor = (*LoggingAIExtractor)(nil)

// LoggingAIExtractor wraps an AIExtractor with logging.
type LoggingAIExtractor struct {
	next   mise.AIExtractor
	logger *slog.Logger
}

// NewLoggingAIExtractor creates a new LoggingAIExtractor.
func NewLoggingAIExtractor(next mise.AIExtractor, logger *slog.Logger) *LoggingAIExtractor {
	return &LoggingAIExtractor{next: next, logger: logger}
}

// ExtractRecipe logs the prompt size, the outcome and, for unparseable
// replies, the parse failure reason.
func (a *LoggingAIExtractor) ExtractRecipe(ctx context.Context, req mise.AIRequest) (d *mise.RecipeDraft, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", req.URL,
			"chars", utf8.RuneCountInString(req.Text),
			"lang", req.Language,
			"duration", time.Since(begin),
		}
		if d != nil {
			attrs = append(attrs, "ingredients", len(d.Ingredients), "steps", len(d.Instructions))
		}
		var pe *mise.AIParseError
		if errors.As(err, &pe) {
			attrs = append(attrs, "reason", pe.Reason)
		}
		attrs = append(attrs, "err", err)
		a.logger.Info("ai extract", attrs...)
	}(time.Now())
	return a.next.ExtractRecipe(ctx, req)
}
