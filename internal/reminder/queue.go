package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeInterviewReminder = "interview:reminder"
	QueueName             = "reminders"
)

type reminderPayload struct {
	InterviewID int64 `json:"interview_id"`
}

// TaskID is the asynq task id of an interview's reminder
func TaskID(interviewID int64) string {
	return "reminder:" + strconv.FormatInt(interviewID, 10)
}

// NewReminderTask builds the delayed task for one interview
func NewReminderTask(interviewID int64, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(reminderPayload{InterviewID: interviewID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeInterviewReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(TaskID(interviewID)),
		asynq.Queue(QueueName),
		asynq.MaxRetry(0),
		asynq.Retention(24 * time.Hour),
	}

	return task, opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskDeleter interface {
	DeleteTask(queue, id string) error
	Close() error
}

// Queue keeps reminders as delayed asynq tasks in Redis, keyed by interview
type Queue struct {
	client    enqueuer
	inspector taskDeleter
	logger    *zap.Logger
}

func NewQueue(opt asynq.RedisClientOpt, logger *zap.Logger) *Queue {
	return &Queue{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		logger:    logger,
	}
}

// Schedule enqueues the reminder; an existing task for the interview is kept
func (q *Queue) Schedule(ctx context.Context, interviewID int64, fireAt time.Time) error {
	task, opts, err := NewReminderTask(interviewID, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}

	info, err := q.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("enqueue reminder: %w", err)
	}

	q.logger.Info("Reminder queued",
		zap.Int64("interview_id", interviewID),
		zap.String("task_id", info.ID),
		zap.Time("fire_at", fireAt))

	return nil
}

// Cancel deletes the pending reminder task, if any
func (q *Queue) Cancel(_ context.Context, interviewID int64) error {
	err := q.inspector.DeleteTask(QueueName, TaskID(interviewID))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil
		}
		return fmt.Errorf("delete reminder task: %w", err)
	}

	q.logger.Info("Reminder task deleted", zap.Int64("interview_id", interviewID))
	return nil
}

func (q *Queue) Close() error {
	return errors.Join(q.client.Close(), q.inspector.Close())
}
