package service

import "github.com/jaspindersingh83/s30mocks-backend/internal/model"

type Action string

const (
	ActionCreateSlot    Action = "create-slot"
	ActionDeleteSlot    Action = "delete-slot"
	ActionBook          Action = "book"
	ActionPay           Action = "pay"
	ActionVerifyPayment Action = "verify-payment"
	ActionCancel        Action = "cancel"
	ActionUpdateStatus  Action = "update-status"
	ActionView          Action = "view"
	ActionEditProfile   Action = "edit-profile"
	ActionManageUsers   Action = "manage-users"
)

// Resource describes who owns the entity an action targets. Zero ids mean none.
type Resource struct {
	CandidateID   int64
	InterviewerID int64
	PayerID       int64
	UserID        int64
}

func (r Resource) isParticipant(userID int64) bool {
	return userID != 0 && (r.CandidateID == userID || r.InterviewerID == userID)
}

// CanAct is the single authorization check of the booking core
func CanAct(actor model.Actor, action Action, res Resource) bool {
	if actor.UserID == 0 || !actor.Role.Valid() {
		return false
	}

	// nobody pays on behalf of someone else, admins included
	if action == ActionPay {
		return res.PayerID == actor.UserID
	}

	// an interviewer cannot book their own time
	if action == ActionBook && res.InterviewerID == actor.UserID {
		return false
	}

	if actor.IsAdmin() {
		return true
	}

	switch action {
	case ActionCreateSlot, ActionDeleteSlot:
		return actor.Role == model.RoleInterviewer && res.InterviewerID == actor.UserID
	case ActionBook:
		return actor.Role == model.RoleCandidate && res.CandidateID == actor.UserID
	case ActionVerifyPayment, ActionUpdateStatus:
		return res.InterviewerID == actor.UserID
	case ActionCancel:
		return res.isParticipant(actor.UserID)
	case ActionView:
		return res.isParticipant(actor.UserID) || res.PayerID == actor.UserID
	case ActionEditProfile:
		return res.UserID == actor.UserID
	default:
		return false
	}
}
