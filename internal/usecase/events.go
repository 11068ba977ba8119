package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

// Broadcaster fans events out to every sink. Sink failures are logged, never returned.
// A nil *Broadcaster drops events.
type Broadcaster struct {
	sinks  []ports.EventSink
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.EventSink = (*Broadcaster)(nil)

// NewBroadcaster skips nil sinks.
func NewBroadcaster(log *slog.Logger, sinks ...ports.EventSink) *Broadcaster {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := &Broadcaster{logger: log, now: time.Now}
	for _, s := range sinks {
		if s != nil {
			b.sinks = append(b.sinks, s)
		}
	}
	return b
}

// Emit builds an event and publishes it.
func (b *Broadcaster) Emit(ctx context.Context, typ domain.EventType, ideaID string, payload map[string]any) {
	if b == nil {
		return
	}
	_ = b.Publish(ctx, domain.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		IdeaID:     ideaID,
		OccurredAt: b.now().UTC(),
		Payload:    payload,
	})
}

// Publish always returns nil.
func (b *Broadcaster) Publish(ctx context.Context, event domain.Event) error {
	if b == nil {
		return nil
	}
	for _, sink := range b.sinks {
		if err := b.deliver(ctx, sink, event); err != nil {
			b.logger.Warn("event sink failed", "event", event.Type, "idea_id", event.IdeaID, "error", err)
		}
	}
	return nil
}

func (b *Broadcaster) deliver(ctx context.Context, sink ports.EventSink, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return sink.Publish(ctx, event)
}
