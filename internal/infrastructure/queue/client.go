package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"TripIdeas/internal/ports"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// inspector is the part of asynq.Inspector used to clear finished tasks.
type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// Client submits enrichment tasks.
type Client struct {
	enqueuer  enqueuer
	inspector inspector
	opts      TaskOptions
}

var _ ports.EnrichmentQueue = (*Client)(nil)

// NewClient wraps an asynq client. The inspector lets archived or completed
// tasks for an idea be replaced; nil keeps every id conflict as a duplicate.
func NewClient(client *asynq.Client, insp *asynq.Inspector, opts TaskOptions) *Client {
	c := &Client{enqueuer: client, opts: opts.withDefaults()}
	if insp != nil {
		c.inspector = insp
	}
	return c
}

// EnqueueEnrich treats a pending, scheduled or running task for the idea as
// success. A task left archived or completed by an earlier run is deleted and
// the idea is enqueued again.
func (c *Client) EnqueueEnrich(ctx context.Context, ideaID string) error {
	task, err := NewEnrichTask(ideaID, c.opts)
	if err != nil {
		return err
	}

	_, err = c.enqueuer.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		var replaced bool
		replaced, err = c.clearFinished(ideaID)
		if err != nil || !replaced {
			return err
		}
		_, err = c.enqueuer.EnqueueContext(ctx, task)
	}
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue enrich %s: %w", ideaID, err)
	}
	return nil
}

// clearFinished reports whether the conflicting task was gone or removed, so
// the caller should enqueue again.
func (c *Client) clearFinished(ideaID string) (bool, error) {
	if c.inspector == nil {
		return false, nil
	}
	queueName, id := c.opts.withDefaults().Queue, TaskID(ideaID)

	info, err := c.inspector.GetTaskInfo(queueName, id)
	switch {
	case errors.Is(err, asynq.ErrTaskNotFound):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("inspect enrich task %s: %w", ideaID, err)
	}

	if info.State != asynq.TaskStateArchived && info.State != asynq.TaskStateCompleted {
		return false, nil
	}
	if err := c.inspector.DeleteTask(queueName, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("delete %s enrich task %s: %w", info.State, ideaID, err)
	}
	return true, nil
}
