// Package apperr holds the error kinds returned by the booking core.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation            Kind = "validation"
	KindConflict              Kind = "conflict"
	KindNotFound              Kind = "not_found"
	KindUnauthorized          Kind = "unauthorized"
	KindInvalidState          Kind = "invalid_state"
	KindDuplicate             Kind = "duplicate"
	KindPendingPaymentExists  Kind = "pending_payment_exists"
	KindSlotNoLongerAvailable Kind = "slot_no_longer_available"
	KindAlreadyBooked         Kind = "already_booked"
	KindStorage               Kind = "storage"
)

// Error is a business error with a kind and a human-readable reason
type Error struct {
	Kind   Kind
	Reason string
	// Blocking lists interview ids for KindPendingPaymentExists
	Blocking []int64
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrUnauthorized          = &Error{Kind: KindUnauthorized}
	ErrInvalidState          = &Error{Kind: KindInvalidState}
	ErrDuplicate             = &Error{Kind: KindDuplicate}
	ErrPendingPaymentExists  = &Error{Kind: KindPendingPaymentExists}
	ErrSlotNoLongerAvailable = &Error{Kind: KindSlotNoLongerAvailable}
	ErrAlreadyBooked         = &Error{Kind: KindAlreadyBooked}
	ErrStorage               = &Error{Kind: KindStorage}
)

func newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return newf(KindValidation, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newf(KindConflict, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newf(KindUnauthorized, format, args...)
}

func InvalidState(format string, args ...interface{}) error {
	return newf(KindInvalidState, format, args...)
}

func Duplicate(format string, args ...interface{}) error {
	return newf(KindDuplicate, format, args...)
}

func AlreadyBooked(slotID int64) error {
	return newf(KindAlreadyBooked, "slot %d is already booked", slotID)
}

func SlotNoLongerAvailable(slotID int64) error {
	return newf(KindSlotNoLongerAvailable, "slot %d is no longer available", slotID)
}

// PendingPaymentExists builds the booking-gate error listing the blocking interviews
func PendingPaymentExists(blocking []int64) error {
	ids := make([]string, 0, len(blocking))
	for _, id := range blocking {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return &Error{
		Kind:     KindPendingPaymentExists,
		Reason:   "complete payment for interviews " + strings.Join(ids, ", ") + " before booking another",
		Blocking: blocking,
	}
}

// Storage wraps an unexpected storage failure. Business errors pass through unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindStorage, Reason: op, Err: err}
}

// KindOf returns the kind of err, or KindStorage for foreign errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// UserMessage returns the message shown to end users for err
func UserMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Something went wrong. Please try again later."
	}

	switch appErr.Kind {
	case KindAlreadyBooked, KindSlotNoLongerAvailable:
		return "This slot just got taken. Please pick another time."
	case KindStorage:
		return "Something went wrong. Please try again later."
	default:
		return appErr.Reason
	}
}
