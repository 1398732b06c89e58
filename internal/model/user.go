package model

import "time"

type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
	RoleAdmin       Role = "admin"
)

// Valid checks the role is known
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleInterviewer || r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id"`
	TelegramID   *int64    `json:"telegram_id"` // nil when the user never linked Telegram
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	UPIID        *string   `json:"upi_id"` // interviewer payment collection details
	UPIPayeeName *string   `json:"upi_payee_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasPaymentDetails checks if the interviewer can collect UPI payments
func (u *User) HasPaymentDetails() bool {
	return u.UPIID != nil && *u.UPIID != ""
}

// Actor is the resolved caller of a core operation.
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin checks if actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
