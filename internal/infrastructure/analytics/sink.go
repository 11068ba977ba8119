// Package analytics records application events as structured log lines.
package analytics

import (
	"context"
	"log/slog"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

// LogSink writes one Info record per event.
type LogSink struct {
	logger *slog.Logger
}

var _ ports.EventSink = (*LogSink)(nil)

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event domain.Event) error {
	attrs := []slog.Attr{
		slog.String("event_id", event.ID),
		slog.String("event", string(event.Type)),
		slog.String("idea_id", event.IdeaID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if len(event.Payload) > 0 {
		fields := make([]any, 0, len(event.Payload)*2)
		for k, v := range event.Payload {
			fields = append(fields, k, v)
		}
		attrs = append(attrs, slog.Group("payload", fields...))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "analytics event", attrs...)
	return nil
}
