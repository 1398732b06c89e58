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

const interviewColumns = `id, candidate_id, interviewer_id, slot_id, interview_type, scheduled_at, duration_minutes,
	amount, currency, status, payment_id, meeting_link, recording_url, problem_statement,
	feedback_rating, feedback_comments, cancelled_by, cancelled_at, created_at, updated_at`

type InterviewRepository struct {
	*base.Repository
}

func NewInterviewRepository(pool *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{Repository: base.NewRepository(pool)}
}

func scanInterview(row pgx.Row) (*model.Interview, error) {
	var iv model.Interview
	err := row.Scan(
		&iv.ID,
		&iv.CandidateID,
		&iv.InterviewerID,
		&iv.SlotID,
		&iv.InterviewType,
		&iv.ScheduledAt,
		&iv.DurationMinutes,
		&iv.Amount,
		&iv.Currency,
		&iv.Status,
		&iv.PaymentID,
		&iv.MeetingLink,
		&iv.RecordingURL,
		&iv.ProblemStatement,
		&iv.FeedbackRating,
		&iv.FeedbackComments,
		&iv.CancelledBy,
		&iv.CancelledAt,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// Create inserts a new interview
func (r *InterviewRepository) Create(ctx context.Context, iv *model.Interview) error {
	query := `
		INSERT INTO interviews (candidate_id, interviewer_id, slot_id, interview_type, scheduled_at,
			duration_minutes, amount, currency, status, payment_id, meeting_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		iv.CandidateID,
		iv.InterviewerID,
		iv.SlotID,
		iv.InterviewType,
		iv.ScheduledAt,
		iv.DurationMinutes,
		iv.Amount,
		iv.Currency,
		iv.Status,
		iv.PaymentID,
		iv.MeetingLink,
	).Scan(&iv.ID, &iv.CreatedAt, &iv.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create interview: %w", err)
	}

	return nil
}

// GetByID returns the interview or nil when it does not exist
func (r *InterviewRepository) GetByID(ctx context.Context, id int64) (*model.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	iv, err := scanInterview(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interview by id: %w", err)
	}

	return iv, nil
}

// Delete removes an interview; used to compensate a failed booking
func (r *InterviewRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM interviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	return nil
}

// SetPayment links the interview to its payment
func (r *InterviewRepository) SetPayment(ctx context.Context, id, paymentID int64) error {
	query := `UPDATE interviews SET payment_id = $1, updated_at = now() WHERE id = $2`

	affected, err := r.ExecAffected(ctx, query, paymentID, id)
	if err != nil {
		return fmt.Errorf("set interview payment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set interview payment: interview %d not found", id)
	}

	return nil
}

// TransitionStatus moves the interview to status `to` only if its current status is one of `from`
func (r *InterviewRepository) TransitionStatus(ctx context.Context, id int64, from []model.InterviewStatus, to model.InterviewStatus) (bool, error) {
	query := `
		UPDATE interviews
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)
	`

	affected, err := r.ExecAffected(ctx, query, to, id, statusStrings(from))
	if err != nil {
		return false, fmt.Errorf("update interview status: %w", err)
	}

	return affected == 1, nil
}

// Cancel marks the interview cancelled if its status is one of `from`
func (r *InterviewRepository) Cancel(ctx context.Context, id int64, from []model.InterviewStatus, by int64, at time.Time) (bool, error) {
	query := `
		UPDATE interviews
		SET status = 'cancelled', cancelled_by = $1, cancelled_at = $2, updated_at = now()
		WHERE id = $3 AND status = ANY($4)
	`

	affected, err := r.ExecAffected(ctx, query, by, at, id, statusStrings(from))
	if err != nil {
		return false, fmt.Errorf("cancel interview: %w", err)
	}

	return affected == 1, nil
}

// AssignProblem stores the problem and starts the interview
func (r *InterviewRepository) AssignProblem(ctx context.Context, id int64, problem string) (bool, error) {
	query := `
		UPDATE interviews
		SET problem_statement = $1, status = 'in-progress', updated_at = now()
		WHERE id = $2 AND status = 'scheduled'
	`

	affected, err := r.ExecAffected(ctx, query, problem, id)
	if err != nil {
		return false, fmt.Errorf("assign problem: %w", err)
	}

	return affected == 1, nil
}

// SaveFeedback stores interviewer feedback and completes the interview
func (r *InterviewRepository) SaveFeedback(ctx context.Context, id int64, rating int, comments string) (bool, error) {
	query := `
		UPDATE interviews
		SET feedback_rating = $1, feedback_comments = $2, status = 'completed', updated_at = now()
		WHERE id = $3 AND status = 'in-progress'
	`

	affected, err := r.ExecAffected(ctx, query, rating, comments, id)
	if err != nil {
		return false, fmt.Errorf("save feedback: %w", err)
	}

	return affected == 1, nil
}

// SaveRecording stores the recording URL and completes the interview
func (r *InterviewRepository) SaveRecording(ctx context.Context, id int64, url string) (bool, error) {
	query := `
		UPDATE interviews
		SET recording_url = $1, status = 'completed', updated_at = now()
		WHERE id = $2 AND status IN ('in-progress', 'completed')
	`

	affected, err := r.ExecAffected(ctx, query, url, id)
	if err != nil {
		return false, fmt.Errorf("save recording: %w", err)
	}

	return affected == 1, nil
}

// LockCandidate serialises direct bookings of one candidate until the transaction ends
func (r *InterviewRepository) LockCandidate(ctx context.Context, candidateID int64) error {
	if err := r.AdvisoryLock(ctx, lockNamespaceCandidate, candidateID); err != nil {
		return fmt.Errorf("lock candidate bookings: %w", err)
	}
	return nil
}

// ListWithUnresolvedPayment returns ids of the candidate's non-cancelled interviews
// whose payment is missing or not yet settled (pending, submitted, rejected)
func (r *InterviewRepository) ListWithUnresolvedPayment(ctx context.Context, candidateID int64) ([]int64, error) {
	query := `
		SELECT i.id
		FROM interviews i
		LEFT JOIN payments p ON p.id = i.payment_id
		WHERE i.candidate_id = $1
		  AND i.status <> 'cancelled'
		  AND (p.id IS NULL OR p.status = ANY($2))
		ORDER BY i.id
	`

	statuses := make([]string, 0, len(model.UnresolvedPaymentStatuses))
	for _, s := range model.UnresolvedPaymentStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.Query(ctx, query, candidateID, statuses)
	if err != nil {
		return nil, fmt.Errorf("list unresolved interviews: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan unresolved interviews: %w", err)
	}

	return ids, nil
}

func statusStrings(statuses []model.InterviewStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
