package domain

import "time"

// EventType names an application milestone forwarded to notification and analytics sinks.
type EventType string

const (
	EventIdeaCreated        EventType = "idea.created"
	EventMoodboardCompleted EventType = "moodboard.completed"
	EventMoodboardFailed    EventType = "moodboard.failed"
)

// Event is an opaque, fire-and-forget payload.
type Event struct {
	ID         string
	Type       EventType
	IdeaID     string
	OccurredAt time.Time
	Payload    map[string]any
}
