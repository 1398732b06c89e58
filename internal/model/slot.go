package model

import "time"

type InterviewType string

const (
	InterviewTypeDSA          InterviewType = "DSA"
	InterviewTypeSystemDesign InterviewType = "SystemDesign"
)

// InterviewTypes lists every bookable interview type.
var InterviewTypes = []InterviewType{InterviewTypeDSA, InterviewTypeSystemDesign}

// SlotDurationTolerance is how far a slot may deviate from its type's fixed duration.
const SlotDurationTolerance = time.Minute

// Valid checks the type is one of the known interview types
func (t InterviewType) Valid() bool {
	return t == InterviewTypeDSA || t == InterviewTypeSystemDesign
}

// Duration returns the fixed slot length for the interview type
func (t InterviewType) Duration() time.Duration {
	switch t {
	case InterviewTypeDSA:
		return 40 * time.Minute
	case InterviewTypeSystemDesign:
		return 50 * time.Minute
	default:
		return 0
	}
}

type Slot struct {
	ID            int64         `json:"id"`
	InterviewerID int64         `json:"interviewer_id"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	InterviewType InterviewType `json:"interview_type"`
	IsBooked      bool          `json:"is_booked"`
	InterviewID   *int64        `json:"interview_id"` // set while booked
	CreatedAt     time.Time     `json:"created_at"`

	// Filled by ListAvailable, not stored
	Price *Price `json:"price,omitempty"`
}

// Overlaps reports whether the slot intersects [start, end)
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

// SlotFilter narrows ListAvailable results. Zero values mean "any".
type SlotFilter struct {
	InterviewerID int64
	InterviewType InterviewType
	From          time.Time
	To            time.Time
}
