package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"go.uber.org/zap"
)

// Store persists reminders; implemented by repository.ReminderRepository
type Store interface {
	Schedule(ctx context.Context, interviewID int64, fireAt time.Time) (bool, error)
	Cancel(ctx context.Context, interviewID int64) (bool, error)
	Get(ctx context.Context, interviewID int64) (*model.Reminder, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
}

const defaultBatchSize = 100

// Sweeper keeps reminders in Postgres and fires the due ones on every tick
type Sweeper struct {
	store    Store
	fire     FireFunc
	interval time.Duration
	batch    int
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewSweeper creates a sweeper; fire may be set later with SetFireFunc
func NewSweeper(store Store, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		batch:    defaultBatchSize,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// SetFireFunc sets the callback run for due reminders
func (s *Sweeper) SetFireFunc(fire FireFunc) {
	s.fire = fire
}

// Schedule stores the reminder; a second call for the same interview is a no-op
func (s *Sweeper) Schedule(ctx context.Context, interviewID int64, fireAt time.Time) error {
	created, err := s.store.Schedule(ctx, interviewID, fireAt)
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	if created {
		s.logger.Info("Reminder scheduled",
			zap.Int64("interview_id", interviewID),
			zap.Time("fire_at", fireAt))
	}
	return nil
}

// Cancel cancels a reminder that has not fired yet
func (s *Sweeper) Cancel(ctx context.Context, interviewID int64) error {
	cancelled, err := s.store.Cancel(ctx, interviewID)
	if err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}

	if cancelled {
		s.logger.Info("Reminder cancelled", zap.Int64("interview_id", interviewID))
	}
	return nil
}

// Lookup returns the stored reminder of an interview, or nil
func (s *Sweeper) Lookup(ctx context.Context, interviewID int64) (*model.Reminder, error) {
	return s.store.Get(ctx, interviewID)
}

// Start runs the sweep loop in the background
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting reminder sweeper", zap.Duration("interval", s.interval))

	go s.run(ctx)
}

// Stop stops the sweep loop
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping reminder sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// catch up on reminders that fell due while the process was down
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Reminder sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reminder sweeper cancelled")
			return
		}
	}
}

// Sweep fires every due reminder and returns how many were fired
func (s *Sweeper) Sweep(ctx context.Context) int {
	fired := 0

	for {
		due, err := s.store.ClaimDue(ctx, s.now(), s.batch)
		if err != nil {
			s.logger.Error("Failed to claim due reminders", zap.Error(err))
			return fired
		}

		for _, rem := range due {
			s.fireOne(ctx, rem)
			fired++
		}

		if len(due) < s.batch {
			return fired
		}
	}
}

func (s *Sweeper) fireOne(ctx context.Context, rem *model.Reminder) {
	if s.fire == nil {
		s.logger.Warn("Reminder claimed without a handler", zap.Int64("interview_id", rem.InterviewID))
		return
	}

	if err := s.fire(ctx, rem.InterviewID); err != nil {
		s.logger.Error("Reminder failed",
			zap.Int64("interview_id", rem.InterviewID),
			zap.Time("fire_at", rem.FireAt),
			zap.Error(err))
		return
	}

	s.logger.Debug("Reminder delivered",
		zap.Int64("interview_id", rem.InterviewID),
		zap.Duration("late_by", s.now().Sub(rem.FireAt)))
}
