package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker consumes reminder tasks from Redis
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(opt asynq.RedisClientOpt, concurrency int, fire FireFunc, logger *zap.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueName: 1},
		Logger:      logger.Sugar(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInterviewReminder, HandleReminderTask(fire, logger))

	return &Worker{server: server, mux: mux, logger: logger}
}

// Run processes tasks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting reminder worker")

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start reminder worker: %w", err)
	}

	<-ctx.Done()
	w.server.Shutdown()

	w.logger.Info("Reminder worker stopped")
	return nil
}

// HandleReminderTask decodes a reminder task and fires it
func HandleReminderTask(fire FireFunc, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p reminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("decode reminder payload: %w: %w", err, asynq.SkipRetry)
		}

		if err := fire(ctx, p.InterviewID); err != nil {
			logger.Error("Reminder failed", zap.Int64("interview_id", p.InterviewID), zap.Error(err))
			return fmt.Errorf("fire reminder %d: %w", p.InterviewID, asynq.SkipRetry)
		}

		return nil
	}
}
