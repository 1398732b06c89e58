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

const paymentColumns = `id, interview_id, slot_id, is_pre_booking, paid_by, amount, currency, reference,
	transaction_ref, screenshot_url, status, verified_by, verified_at, rejection_reason, created_at, updated_at`

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(pool)}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.InterviewID,
		&p.SlotID,
		&p.IsPreBooking,
		&p.PaidBy,
		&p.Amount,
		&p.Currency,
		&p.Reference,
		&p.TransactionRef,
		&p.ScreenshotURL,
		&p.Status,
		&p.VerifiedBy,
		&p.VerifiedAt,
		&p.RejectionReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a payment. A second active payment for one interview fails with ErrDuplicate.
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (interview_id, slot_id, is_pre_booking, paid_by, amount, currency, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		p.InterviewID,
		p.SlotID,
		p.IsPreBooking,
		p.PaidBy,
		p.Amount,
		p.Currency,
		p.Reference,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create payment: %w", ErrDuplicate)
		}
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// GetByID returns the payment or nil when it does not exist
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}

	return p, nil
}

// FindActiveByInterview returns the non-rejected payment of the interview, or nil
func (r *PaymentRepository) FindActiveByInterview(ctx context.Context, interviewID int64) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE interview_id = $1 AND status <> 'rejected'
		LIMIT 1
	`

	p, err := scanPayment(r.QueryRow(ctx, query, interviewID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active payment: %w", err)
	}

	return p, nil
}

// FindPendingPrebooking returns the payer's pending pre-booking payment for the slot, or nil
func (r *PaymentRepository) FindPendingPrebooking(ctx context.Context, payerID, slotID int64) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE paid_by = $1 AND slot_id = $2 AND is_pre_booking AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	p, err := scanPayment(r.QueryRow(ctx, query, payerID, slotID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending pre-booking payment: %w", err)
	}

	return p, nil
}

// SubmitProof records proof of payment if the payment is pending or rejected
func (r *PaymentRepository) SubmitProof(ctx context.Context, id int64, transactionRef, screenshotURL string) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'submitted',
		    transaction_ref = $1,
		    screenshot_url = $2,
		    verified_by = NULL,
		    verified_at = NULL,
		    rejection_reason = NULL,
		    updated_at = now()
		WHERE id = $3 AND status IN ('pending', 'rejected')
	`

	affected, err := r.ExecAffected(ctx, query, transactionRef, screenshotURL, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return false, fmt.Errorf("submit payment proof: %w", ErrDuplicate)
		}
		return false, fmt.Errorf("submit payment proof: %w", err)
	}

	return affected == 1, nil
}

// Review settles a submitted payment as verified or rejected
func (r *PaymentRepository) Review(ctx context.Context, id int64, status model.PaymentStatus, verifierID int64, reason *string, at time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, verified_by = $2, verified_at = $3, rejection_reason = $4, updated_at = now()
		WHERE id = $5 AND status = 'submitted'
	`

	affected, err := r.ExecAffected(ctx, query, status, verifierID, at, reason, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return false, fmt.Errorf("review payment: %w", ErrDuplicate)
		}
		return false, fmt.Errorf("review payment: %w", err)
	}

	return affected == 1, nil
}

// LinkToInterview turns a pre-booking payment into the interview's payment
func (r *PaymentRepository) LinkToInterview(ctx context.Context, id, interviewID int64) error {
	query := `
		UPDATE payments
		SET interview_id = $1, slot_id = NULL, is_pre_booking = FALSE, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, interviewID, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("link payment: %w", ErrDuplicate)
		}
		return fmt.Errorf("link payment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("link payment: payment %d not found", id)
	}

	return nil
}

// UnlinkFromInterview restores a pre-booking payment after a failed booking
func (r *PaymentRepository) UnlinkFromInterview(ctx context.Context, id, slotID int64) error {
	query := `
		UPDATE payments
		SET interview_id = NULL, slot_id = $1, is_pre_booking = TRUE, updated_at = now()
		WHERE id = $2
	`

	if _, err := r.ExecAffected(ctx, query, slotID, id); err != nil {
		return fmt.Errorf("unlink payment: %w", err)
	}

	return nil
}
