package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaspindersingh83/s30mocks-backend/internal/apperr"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository"
	"go.uber.org/zap"
)

const (
	ScreenshotFolder   = "payment-screenshots"
	MaxScreenshotBytes = 5 << 20
)

var screenshotTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// PaymentTarget says what a payment pays for. Exactly one field is set.
type PaymentTarget struct {
	InterviewID int64
	SlotID      int64
}

type PaymentService struct {
	store  PaymentStore
	blobs  BlobStore
	now    func() time.Time
	logger *zap.Logger
}

func NewPaymentService(store PaymentStore, blobs BlobStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:  store,
		blobs:  blobs,
		now:    time.Now,
		logger: logger,
	}
}

// Get returns the payment or NotFound
func (s *PaymentService) Get(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("get payment", err)
	}
	if p == nil {
		return nil, apperr.NotFound("payment %d not found", id)
	}
	return p, nil
}

// CreatePending opens a payment waiting for proof
func (s *PaymentService) CreatePending(ctx context.Context, payerID, amount int64, currency string, target PaymentTarget) (*model.Payment, error) {
	if (target.InterviewID == 0) == (target.SlotID == 0) {
		return nil, apperr.Validation("payment must target exactly one of interview or slot")
	}
	if amount <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}

	p := &model.Payment{
		PaidBy:    payerID,
		Amount:    amount,
		Currency:  currency,
		Reference: uuid.New(),
		Status:    model.PaymentStatusPending,
	}

	if target.InterviewID != 0 {
		active, err := s.store.FindActiveByInterview(ctx, target.InterviewID)
		if err != nil {
			return nil, apperr.Storage("find active payment", err)
		}
		if active != nil {
			return nil, apperr.Duplicate("interview %d already has payment %d (%s)", target.InterviewID, active.ID, active.Status)
		}
		p.InterviewID = &target.InterviewID
	} else {
		p.SlotID = &target.SlotID
		p.IsPreBooking = true
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("interview %d already has an active payment", target.InterviewID)
		}
		return nil, apperr.Storage("create payment", err)
	}

	s.logger.Info("Payment created",
		zap.Int64("payment_id", p.ID),
		zap.Int64("paid_by", payerID),
		zap.Int64("amount", amount),
		zap.Bool("pre_booking", p.IsPreBooking),
	)

	return p, nil
}

// SubmitProof attaches proof of a UPI transfer. Allowed from pending and,
// for resubmission in place, from rejected.
func (s *PaymentService) SubmitProof(ctx context.Context, paymentID, payerID int64, transactionID, screenshotURL string) (*model.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	screenshotURL = strings.TrimSpace(screenshotURL)
	if transactionID == "" {
		return nil, apperr.Validation("transaction id is required")
	}
	if screenshotURL == "" {
		return nil, apperr.Validation("payment screenshot is required")
	}

	p, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.PaidBy != payerID {
		return nil, apperr.Unauthorized("payment %d belongs to another user", paymentID)
	}
	if !p.CanSubmitProof() {
		return nil, apperr.InvalidState("payment %d is %s", paymentID, p.Status)
	}

	ok, err := s.store.SubmitProof(ctx, paymentID, transactionTail(transactionID), screenshotURL)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("interview already has another active payment")
		}
		return nil, apperr.Storage("submit payment proof", err)
	}
	if !ok {
		return nil, apperr.InvalidState("payment %d changed state", paymentID)
	}

	s.logger.Info("Payment proof submitted",
		zap.Int64("payment_id", paymentID),
		zap.Int64("paid_by", payerID),
		zap.String("previous_status", string(p.Status)),
	)

	return s.Get(ctx, paymentID)
}

// Verify settles a submitted payment. Callers check the verifier may do so.
func (s *PaymentService) Verify(ctx context.Context, paymentID, verifierID int64, approved bool, reason string) (*model.Payment, error) {
	p, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusSubmitted {
		return nil, apperr.InvalidState("payment %d is %s, only submitted payments can be verified", paymentID, p.Status)
	}

	status := model.PaymentStatusVerified
	var rejection *string
	if !approved {
		status = model.PaymentStatusRejected
		if reason = strings.TrimSpace(reason); reason != "" {
			rejection = &reason
		}
	}

	ok, err := s.store.Review(ctx, paymentID, status, verifierID, rejection, s.now())
	if err != nil {
		return nil, apperr.Storage("review payment", err)
	}
	if !ok {
		return nil, apperr.InvalidState("payment %d changed state", paymentID)
	}

	s.logger.Info("Payment reviewed",
		zap.Int64("payment_id", paymentID),
		zap.Int64("verifier_id", verifierID),
		zap.String("status", string(status)),
	)

	return s.Get(ctx, paymentID)
}

// LinkToInterview turns a pre-booking payment into the interview's payment
func (s *PaymentService) LinkToInterview(ctx context.Context, paymentID, interviewID int64) error {
	if err := s.store.LinkToInterview(ctx, paymentID, interviewID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Duplicate("interview %d already has an active payment", interviewID)
		}
		return apperr.Storage("link payment", err)
	}
	return nil
}

// UnlinkFromInterview returns a linked payment to its pre-booking slot
func (s *PaymentService) UnlinkFromInterview(ctx context.Context, paymentID, slotID int64) error {
	if err := s.store.UnlinkFromInterview(ctx, paymentID, slotID); err != nil {
		return apperr.Storage("unlink payment", err)
	}
	return nil
}

// FindPendingPrebooking returns the payer's open pre-booking payment for the slot, or nil
func (s *PaymentService) FindPendingPrebooking(ctx context.Context, payerID, slotID int64) (*model.Payment, error) {
	p, err := s.store.FindPendingPrebooking(ctx, payerID, slotID)
	if err != nil {
		return nil, apperr.Storage("find pending payment", err)
	}
	return p, nil
}

// UploadScreenshot stores a payment screenshot and returns its URL
func (s *PaymentService) UploadScreenshot(ctx context.Context, actor model.Actor, data []byte, mimeType string) (string, error) {
	if !screenshotTypes[mimeType] {
		return "", apperr.Validation("screenshot must be a JPEG, PNG or WebP image")
	}
	if len(data) == 0 {
		return "", apperr.Validation("screenshot is empty")
	}
	if len(data) > MaxScreenshotBytes {
		return "", apperr.Validation("screenshot is larger than %d MB", MaxScreenshotBytes>>20)
	}

	if s.blobs == nil {
		return "", apperr.Storage("upload screenshot", errors.New("screenshot storage is not configured"))
	}

	url, err := s.blobs.Upload(ctx, data, mimeType, ScreenshotFolder)
	if err != nil {
		return "", apperr.Storage("upload screenshot", err)
	}

	s.logger.Info("Payment screenshot uploaded",
		zap.Int64("user_id", actor.UserID),
		zap.Int("bytes", len(data)))

	return url, nil
}

// transactionTail keeps only the last 4 characters of a UPI transaction id
func transactionTail(id string) string {
	r := []rune(id)
	if len(r) <= 4 {
		return id
	}
	return string(r[len(r)-4:])
}
