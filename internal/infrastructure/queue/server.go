package queue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
)

// ServerConfig sizes the worker pool.
type ServerConfig struct {
	Concurrency int
	Queue       string
}

// NewServer builds a task server that logs through slog.
func NewServer(redis asynq.RedisConnOpt, cfg ServerConfig, log *slog.Logger) *asynq.Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Queue == "" {
		cfg.Queue = TaskOptions{}.withDefaults().Queue
	}
	return asynq.NewServer(redis, asynq.Config{
		Concurrency:    cfg.Concurrency,
		RetryDelayFunc: asynq.DefaultRetryDelayFunc,
		Queues:         map[string]int{cfg.Queue: 1},
		Logger:         slogAdapter{log: log},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Error("enrich task failed", "task_type", task.Type(), "retry", retried, "max_retry", maxRetry, "error", err)
		}),
	})
}

type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Debug(args ...interface{}) { a.log.Debug(fmt.Sprint(args...)) }
func (a slogAdapter) Info(args ...interface{})  { a.log.Info(fmt.Sprint(args...)) }
func (a slogAdapter) Warn(args ...interface{})  { a.log.Warn(fmt.Sprint(args...)) }
func (a slogAdapter) Error(args ...interface{}) { a.log.Error(fmt.Sprint(args...)) }

func (a slogAdapter) Fatal(args ...interface{}) {
	a.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}
