package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created, waiting for proof
	PaymentStatusSubmitted PaymentStatus = "submitted" // proof uploaded
	PaymentStatusVerified  PaymentStatus = "verified"
	PaymentStatusRejected  PaymentStatus = "rejected" // proof may be resubmitted
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Unresolved statuses keep a candidate behind the pending-payment gate.
var UnresolvedPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusSubmitted,
	PaymentStatusRejected,
}

type Payment struct {
	ID              int64         `json:"id"`
	InterviewID     *int64        `json:"interview_id"`
	SlotID          *int64        `json:"slot_id"` // only while IsPreBooking
	IsPreBooking    bool          `json:"is_pre_booking"`
	PaidBy          int64         `json:"paid_by"`
	Amount          int64         `json:"amount"` // paise
	Currency        string        `json:"currency"`
	Reference       uuid.UUID     `json:"reference"`       // goes into the UPI transfer note
	TransactionRef  *string       `json:"transaction_ref"` // last 4 characters of the UPI transaction id
	ScreenshotURL   *string       `json:"screenshot_url"`
	Status          PaymentStatus `json:"status"`
	VerifiedBy      *int64        `json:"verified_by"`
	VerifiedAt      *time.Time    `json:"verified_at"`
	RejectionReason *string       `json:"rejection_reason"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsActive reports whether the payment still counts as the interview's payment
func (p *Payment) IsActive() bool {
	return p.Status != PaymentStatusRejected
}

// CanSubmitProof checks if proof may be (re)submitted
func (p *Payment) CanSubmitProof() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusRejected
}

// PaymentInstructions is what a candidate needs to pay out of band.
type PaymentInstructions struct {
	Payment   *Payment `json:"payment"`
	UPIID     string   `json:"upi_id"`
	PayeeName string   `json:"payee_name"`
	UPILink   string   `json:"upi_link"`
}
