// Package queue carries enrichment requests over asynq so they survive restarts.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeEnrichIdea is the asynq task type for one enrichment run.
const TypeEnrichIdea = "idea:enrich"

// EnrichPayload is the task body.
type EnrichPayload struct {
	IdeaID string `json:"idea_id"`
}

// TaskOptions tune how enrichment tasks are scheduled.
type TaskOptions struct {
	Queue    string        `yaml:"queue"`
	MaxRetry int           `yaml:"maxRetry"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (o TaskOptions) withDefaults() TaskOptions {
	if o.Queue == "" {
		o.Queue = "enrichment"
	}
	if o.MaxRetry <= 0 {
		o.MaxRetry = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Minute
	}
	return o
}

// TaskID is the asynq task id used for an idea's enrichment.
func TaskID(ideaID string) string {
	return "enrich:" + ideaID
}

// NewEnrichTask builds a task whose ID collapses duplicate submissions for the same idea.
func NewEnrichTask(ideaID string, o TaskOptions) (*asynq.Task, error) {
	if ideaID == "" {
		return nil, fmt.Errorf("idea id is required")
	}
	payload, err := json.Marshal(EnrichPayload{IdeaID: ideaID})
	if err != nil {
		return nil, fmt.Errorf("marshal enrich payload: %w", err)
	}
	o = o.withDefaults()
	return asynq.NewTask(TypeEnrichIdea, payload,
		asynq.TaskID(TaskID(ideaID)),
		asynq.MaxRetry(o.MaxRetry),
		asynq.Timeout(o.Timeout),
		asynq.Queue(o.Queue),
	), nil
}
