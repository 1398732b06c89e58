// Package reminder schedules the pre-interview reminder durably, either in
// Postgres (swept by a ticker) or as delayed tasks in Redis via asynq.
package reminder

import (
	"context"
)

// FireFunc is called once when an interview's reminder is due.
// It must re-check the interview itself; failures are not retried.
type FireFunc func(ctx context.Context, interviewID int64) error

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)
