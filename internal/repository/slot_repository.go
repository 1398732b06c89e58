package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository/base"
)

// advisory lock namespaces
const (
	lockNamespaceInterviewer = 1
	lockNamespaceCandidate   = 2
)

const slotColumns = `id, interviewer_id, start_time, end_time, interview_type, is_booked, interview_id, created_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.InterviewerID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.InterviewType,
		&slot.IsBooked,
		&slot.InterviewID,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new slot
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO interview_slots (interviewer_id, start_time, end_time, interview_type, is_booked, interview_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.InterviewerID,
		slot.StartTime,
		slot.EndTime,
		slot.InterviewType,
		slot.IsBooked,
		slot.InterviewID,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID returns the slot or nil when it does not exist
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM interview_slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// LockInterviewer serialises slot creation for one interviewer until the transaction ends
func (r *SlotRepository) LockInterviewer(ctx context.Context, interviewerID int64) error {
	if err := r.AdvisoryLock(ctx, lockNamespaceInterviewer, interviewerID); err != nil {
		return fmt.Errorf("lock interviewer slots: %w", err)
	}
	return nil
}

// FindOverlapping returns an existing slot of the interviewer intersecting [start, end), or nil
func (r *SlotRepository) FindOverlapping(ctx context.Context, interviewerID int64, start, end time.Time) (*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM interview_slots
		WHERE interviewer_id = $1
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
		LIMIT 1
	`

	slot, err := scanSlot(r.QueryRow(ctx, query, interviewerID, start, end))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find overlapping slot: %w", err)
	}

	return slot, nil
}

// Reserve books the slot for the interview only if it is still free.
// Returns false when another caller got there first.
func (r *SlotRepository) Reserve(ctx context.Context, slotID, interviewID int64) (bool, error) {
	query := `
		UPDATE interview_slots
		SET is_booked = TRUE, interview_id = $1
		WHERE id = $2 AND NOT is_booked
	`

	affected, err := r.ExecAffected(ctx, query, interviewID, slotID)
	if err != nil {
		return false, fmt.Errorf("reserve slot: %w", err)
	}

	return affected == 1, nil
}

// Release frees the slot. Releasing a free slot is a no-op.
func (r *SlotRepository) Release(ctx context.Context, slotID int64) error {
	query := `
		UPDATE interview_slots
		SET is_booked = FALSE, interview_id = NULL
		WHERE id = $1
	`

	if _, err := r.ExecAffected(ctx, query, slotID); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	return nil
}

// DeleteUnbooked removes the slot if nobody booked it
func (r *SlotRepository) DeleteUnbooked(ctx context.Context, slotID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM interview_slots WHERE id = $1 AND NOT is_booked`, slotID)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}
	return affected == 1, nil
}

// ListAvailable returns free future slots matching the filter
func (r *SlotRepository) ListAvailable(ctx context.Context, filter model.SlotFilter, now time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM interview_slots
		WHERE NOT is_booked
		  AND start_time > $1
		  AND ($2::bigint = 0 OR interviewer_id = $2)
		  AND ($3::text = '' OR interview_type = $3)
		  AND ($4::timestamptz IS NULL OR start_time >= $4)
		  AND ($5::timestamptz IS NULL OR start_time < $5)
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query,
		now,
		filter.InterviewerID,
		string(filter.InterviewType),
		nullableTime(filter.From),
		nullableTime(filter.To),
	)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
