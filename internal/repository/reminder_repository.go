package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository/base"
	"go.uber.org/zap"
)

// ReminderRepository persists interview reminders for the sweep-based scheduler
type ReminderRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewReminderRepository creates a reminder repository
func NewReminderRepository(pool *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

func scanReminder(row pgx.Row) (*model.Reminder, error) {
	var rem model.Reminder
	if err := row.Scan(&rem.InterviewID, &rem.FireAt, &rem.Status, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
		return nil, err
	}
	return &rem, nil
}

// Schedule stores a reminder. Scheduling an interview twice keeps the first entry.
func (r *ReminderRepository) Schedule(ctx context.Context, interviewID int64, fireAt time.Time) (bool, error) {
	query := `
		INSERT INTO interview_reminders (interview_id, fire_at, status)
		VALUES ($1, $2, 'scheduled')
		ON CONFLICT (interview_id) DO NOTHING
	`

	affected, err := r.ExecAffected(ctx, query, interviewID, fireAt)
	if err != nil {
		return false, fmt.Errorf("schedule reminder: %w", err)
	}

	return affected == 1, nil
}

// Cancel cancels a reminder that has not fired yet
func (r *ReminderRepository) Cancel(ctx context.Context, interviewID int64) (bool, error) {
	query := `
		UPDATE interview_reminders
		SET status = 'cancelled', updated_at = now()
		WHERE interview_id = $1 AND status = 'scheduled'
	`

	affected, err := r.ExecAffected(ctx, query, interviewID)
	if err != nil {
		return false, fmt.Errorf("cancel reminder: %w", err)
	}

	return affected == 1, nil
}

// Get returns the reminder of the interview or nil
func (r *ReminderRepository) Get(ctx context.Context, interviewID int64) (*model.Reminder, error) {
	query := `
		SELECT interview_id, fire_at, status, created_at, updated_at
		FROM interview_reminders
		WHERE interview_id = $1
	`

	rem, err := scanReminder(r.QueryRow(ctx, query, interviewID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reminder: %w", err)
	}

	return rem, nil
}

// ClaimDue marks up to limit due reminders as fired and returns them.
// Concurrent sweepers never claim the same row.
func (r *ReminderRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	query := `
		UPDATE interview_reminders
		SET status = 'fired', updated_at = now()
		WHERE interview_id IN (
			SELECT interview_id
			FROM interview_reminders
			WHERE status = 'scheduled' AND fire_at <= $1
			ORDER BY fire_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING interview_id, fire_at, status, created_at, updated_at
	`

	rows, err := r.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}

	if len(reminders) > 0 {
		r.logger.Debug("Claimed due reminders", zap.Int("count", len(reminders)))
	}

	return reminders, nil
}
