package model

import "time"

type ReminderStatus string

const (
	ReminderStatusScheduled ReminderStatus = "scheduled"
	ReminderStatusFired     ReminderStatus = "fired"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// Reminder is a persisted one-shot callback keyed by interview
type Reminder struct {
	InterviewID int64          `json:"interview_id"`
	FireAt      time.Time      `json:"fire_at"`
	Status      ReminderStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
