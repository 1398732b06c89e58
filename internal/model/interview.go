package model

import "time"

type InterviewStatus string

const (
	InterviewStatusScheduled  InterviewStatus = "scheduled"
	InterviewStatusInProgress InterviewStatus = "in-progress"
	InterviewStatusCompleted  InterviewStatus = "completed"
	InterviewStatusCancelled  InterviewStatus = "cancelled"
)

type Interview struct {
	ID               int64           `json:"id"`
	CandidateID      int64           `json:"candidate_id"`
	InterviewerID    int64           `json:"interviewer_id"`
	SlotID           *int64          `json:"slot_id"` // nil for direct bookings
	InterviewType    InterviewType   `json:"interview_type"`
	ScheduledAt      time.Time       `json:"scheduled_at"`
	DurationMinutes  int             `json:"duration_minutes"`
	Amount           int64           `json:"amount"` // paise
	Currency         string          `json:"currency"`
	Status           InterviewStatus `json:"status"`
	PaymentID        *int64          `json:"payment_id"`
	MeetingLink      string          `json:"meeting_link"`
	RecordingURL     *string         `json:"recording_url"`
	ProblemStatement *string         `json:"problem_statement"`
	FeedbackRating   *int            `json:"feedback_rating"`
	FeedbackComments *string         `json:"feedback_comments"`
	CancelledBy      *int64          `json:"cancelled_by"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// EndsAt returns the scheduled end of the interview
func (i *Interview) EndsAt() time.Time {
	return i.ScheduledAt.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

// IsParticipant checks whether the user is the candidate or the interviewer
func (i *Interview) IsParticipant(userID int64) bool {
	return i.CandidateID == userID || i.InterviewerID == userID
}
