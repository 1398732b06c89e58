// Package notify delivers booking events to people and downstream systems.
package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
)

type EventType string

const (
	EventBookingConfirmed  EventType = "booking_confirmed"
	EventBookingCancelled  EventType = "booking_cancelled"
	EventPaymentSubmitted  EventType = "payment_submitted"
	EventPaymentVerified   EventType = "payment_verified"
	EventInterviewReminder EventType = "interview_reminder"
)

// Event is the payload handed to the notifier. Snapshots may be nil when
// they could not be loaded.
type Event struct {
	ID          uuid.UUID        `json:"id"`
	Type        EventType        `json:"type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Interview   *model.Interview `json:"interview,omitempty"`
	Candidate   *model.User      `json:"candidate,omitempty"`
	Interviewer *model.User      `json:"interviewer,omitempty"`
	Payment     *model.Payment   `json:"payment,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// NewEvent stamps a new event with an id and time
func NewEvent(t EventType, interview *model.Interview, candidate, interviewer *model.User, payment *model.Payment) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		OccurredAt:  time.Now(),
		Interview:   interview,
		Candidate:   candidate,
		Interviewer: interviewer,
		Payment:     payment,
	}
}

// Recipient is one person an event is delivered to
type Recipient struct {
	Name       string
	Email      string
	TelegramID int64
	Role       model.Role
}

func recipientFromUser(u *model.User) Recipient {
	r := Recipient{Name: u.Name, Email: u.Email, Role: u.Role}
	if u.TelegramID != nil {
		r.TelegramID = *u.TelegramID
	}
	return r
}

// notifiesAdmins lists the events admins receive
func notifiesAdmins(t EventType) bool {
	return t == EventBookingCancelled || t == EventPaymentSubmitted
}

// Recipients returns who should hear about e
func Recipients(e Event, admins []Recipient) []Recipient {
	var out []Recipient
	if e.Candidate != nil {
		out = append(out, recipientFromUser(e.Candidate))
	}
	if e.Interviewer != nil {
		out = append(out, recipientFromUser(e.Interviewer))
	}
	if notifiesAdmins(e.Type) {
		out = append(out, admins...)
	}
	return out
}
