package service

import (
	"context"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/notify"
)

// Stores are satisfied by the postgres repositories.

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	LockInterviewer(ctx context.Context, interviewerID int64) error
	FindOverlapping(ctx context.Context, interviewerID int64, start, end time.Time) (*model.Slot, error)
	Reserve(ctx context.Context, slotID, interviewID int64) (bool, error)
	Release(ctx context.Context, slotID int64) error
	DeleteUnbooked(ctx context.Context, slotID int64) (bool, error)
	ListAvailable(ctx context.Context, filter model.SlotFilter, now time.Time) ([]*model.Slot, error)
}

type InterviewStore interface {
	Create(ctx context.Context, iv *model.Interview) error
	GetByID(ctx context.Context, id int64) (*model.Interview, error)
	Delete(ctx context.Context, id int64) error
	SetPayment(ctx context.Context, id, paymentID int64) error
	TransitionStatus(ctx context.Context, id int64, from []model.InterviewStatus, to model.InterviewStatus) (bool, error)
	Cancel(ctx context.Context, id int64, from []model.InterviewStatus, by int64, at time.Time) (bool, error)
	AssignProblem(ctx context.Context, id int64, problem string) (bool, error)
	SaveFeedback(ctx context.Context, id int64, rating int, comments string) (bool, error)
	SaveRecording(ctx context.Context, id int64, url string) (bool, error)
	LockCandidate(ctx context.Context, candidateID int64) error
	ListWithUnresolvedPayment(ctx context.Context, candidateID int64) ([]int64, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	FindActiveByInterview(ctx context.Context, interviewID int64) (*model.Payment, error)
	FindPendingPrebooking(ctx context.Context, payerID, slotID int64) (*model.Payment, error)
	SubmitProof(ctx context.Context, id int64, transactionRef, screenshotURL string) (bool, error)
	Review(ctx context.Context, id int64, status model.PaymentStatus, verifierID int64, reason *string, at time.Time) (bool, error)
	LinkToInterview(ctx context.Context, id, interviewID int64) error
	UnlinkFromInterview(ctx context.Context, id, slotID int64) error
}

type PriceStore interface {
	Get(ctx context.Context, interviewType model.InterviewType) (*model.Price, error)
	Upsert(ctx context.Context, p *model.Price) error
	InsertIfMissing(ctx context.Context, p *model.Price) (bool, error)
}

// PriceCache is an optional read-through cache in front of PriceStore
type PriceCache interface {
	Get(ctx context.Context, interviewType model.InterviewType) (*model.Price, error)
	Set(ctx context.Context, p *model.Price) error
	Invalidate(ctx context.Context, interviewType model.InterviewType) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// Collaborators. None of their failures are returned to callers.

type Notifier interface {
	Notify(ctx context.Context, e notify.Event)
}

type ReminderScheduler interface {
	Schedule(ctx context.Context, interviewID int64, fireAt time.Time) error
	Cancel(ctx context.Context, interviewID int64) error
}

type BlobStore interface {
	Upload(ctx context.Context, data []byte, mimeType, folder string) (string, error)
}
