package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"

	"TripIdeas/internal/domain"
)

// Runner enriches one idea.
type Runner interface {
	Enrich(ctx context.Context, ideaID string) error
}

// Handler executes enrichment tasks.
type Handler struct {
	runner Runner
	logger *slog.Logger
}

var _ asynq.Handler = (*Handler)(nil)

// NewHandler wires the orchestrator into the task server.
func NewHandler(runner Runner, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{runner: runner, logger: log}
}

// ProcessTask returns nil for finished or concurrently running ideas and
// asynq.SkipRetry for ideas that do not exist.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p EnrichPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.IdeaID == "" {
		return fmt.Errorf("bad enrich payload %q: %w", t.Payload(), asynq.SkipRetry)
	}

	err := h.runner.Enrich(ctx, p.IdeaID)
	if err == nil {
		return nil
	}

	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		h.logger.Warn("dropping enrich task for missing idea", "idea_id", p.IdeaID)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	case domain.CodeAlreadyProcessing:
		h.logger.Info("idea already being enriched", "idea_id", p.IdeaID)
		return nil
	}
	return err
}

// Register mounts the handler on mux.
func Register(mux *asynq.ServeMux, h *Handler) {
	mux.Handle(TypeEnrichIdea, h)
}
