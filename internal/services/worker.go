package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codemule/adminbase/backend/internal/config"
	"github.com/codemule/adminbase/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

// Worker processes tasks from the async queue
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	emailSvc *EmailService
}

// NewWorker creates a new task worker
func NewWorker(cfg *config.Config, emailSvc *EmailService) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Redis.WorkerConcurrency,
		Queues: map[string]int{
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Errorf("[Worker] Task failed: type=%s, error=%v", task.Type(), err)
		}),
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		emailSvc: emailSvc,
	}

	w.mux.HandleFunc(TaskTypeEmail, w.handleEmailTask)

	return w
}

// Start begins processing tasks (blocking call, run in goroutine)
func (w *Worker) Start() error {
	logger.Infof("[Worker] Starting task worker")
	return w.server.Run(w.mux)
}

// Shutdown gracefully stops the worker
func (w *Worker) Shutdown() {
	logger.Infof("[Worker] Shutting down task worker")
	w.server.Shutdown()
}

// handleEmailTask processes a queued email task
func (w *Worker) handleEmailTask(ctx context.Context, t *asynq.Task) error {
	var task EmailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal email task: %w", err)
	}

	logger.Infof("[Worker] Processing email task: kind=%s, to=%s", task.Kind, task.To)
	return w.emailSvc.ProcessEmailTask(ctx, &task)
}
