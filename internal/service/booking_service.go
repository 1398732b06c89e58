package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaspindersingh83/s30mocks-backend/internal/apperr"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/notify"
	"go.uber.org/zap"
)

const DefaultReminderLead = 30 * time.Minute

// BookingSettings tunes the coordinator
type BookingSettings struct {
	MeetingBaseURL string
	ReminderLead   time.Duration
}

// BookingService coordinates slots, prices, payments and interviews
type BookingService struct {
	tx         TxRunner
	slots      *SlotService
	interviews InterviewStore
	users      UserStore
	payments   *PaymentService
	prices     *PriceService
	reminders  ReminderScheduler
	notifier   Notifier
	settings   BookingSettings
	now        func() time.Time
	logger     *zap.Logger
}

func NewBookingService(
	tx TxRunner,
	slots *SlotService,
	interviews InterviewStore,
	users UserStore,
	payments *PaymentService,
	prices *PriceService,
	reminders ReminderScheduler,
	notifier Notifier,
	settings BookingSettings,
	logger *zap.Logger,
) *BookingService {
	if settings.ReminderLead <= 0 {
		settings.ReminderLead = DefaultReminderLead
	}
	return &BookingService{
		tx:         tx,
		slots:      slots,
		interviews: interviews,
		users:      users,
		payments:   payments,
		prices:     prices,
		reminders:  reminders,
		notifier:   notifier,
		settings:   settings,
		now:        time.Now,
		logger:     logger,
	}
}

// InitiatePrebookingPayment opens a payment for a free slot and returns how to pay it
func (s *BookingService) InitiatePrebookingPayment(ctx context.Context, actor model.Actor, slotID int64) (*model.PaymentInstructions, error) {
	slot, err := s.getSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionBook, Resource{CandidateID: actor.UserID, InterviewerID: slot.InterviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot book slot %d", actor.UserID, slotID)
	}
	if slot.IsBooked {
		return nil, apperr.AlreadyBooked(slotID)
	}
	if !slot.StartTime.After(s.now()) {
		return nil, apperr.Validation("slot %d has already started", slotID)
	}

	interviewer, err := s.getUser(ctx, slot.InterviewerID)
	if err != nil {
		return nil, err
	}
	if !interviewer.HasPaymentDetails() {
		return nil, apperr.Validation("interviewer has not set up UPI payment details yet")
	}

	// same candidate coming back to the same slot keeps the open payment
	payment, err := s.payments.FindPendingPrebooking(ctx, actor.UserID, slotID)
	if err != nil {
		return nil, err
	}

	if payment == nil {
		price, err := s.prices.GetPrice(ctx, slot.InterviewType)
		if err != nil {
			return nil, err
		}

		payment, err = s.payments.CreatePending(ctx, actor.UserID, price.Amount, price.Currency, PaymentTarget{SlotID: slotID})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("Pre-booking payment initiated",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("candidate_id", actor.UserID),
		zap.Int64("slot_id", slotID),
	)

	return paymentInstructions(payment, interviewer), nil
}

// CompletePrebookingPayment records the candidate's proof and books the slot
func (s *BookingService) CompletePrebookingPayment(ctx context.Context, actor model.Actor, paymentID int64, transactionID, screenshotURL string, slotID int64) (*model.Interview, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionPay, Resource{PayerID: payment.PaidBy}) {
		return nil, apperr.Unauthorized("payment %d belongs to another user", paymentID)
	}
	if !payment.IsPreBooking || payment.SlotID == nil || *payment.SlotID != slotID {
		return nil, apperr.Validation("payment %d is not a pre-booking payment for slot %d", paymentID, slotID)
	}

	// Proof is stored before the slot is taken so a candidate who lost the
	// slot still has a submitted payment the operator can refund.
	if payment.Status != model.PaymentStatusSubmitted {
		payment, err = s.payments.SubmitProof(ctx, paymentID, actor.UserID, transactionID, screenshotURL)
		if err != nil {
			return nil, err
		}
	}

	slot, err := s.getSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.IsBooked {
		s.logger.Warn("Slot taken before booking completed",
			zap.Int64("slot_id", slotID),
			zap.Int64("payment_id", paymentID))
		return nil, apperr.SlotNoLongerAvailable(slotID)
	}

	interview := &model.Interview{
		CandidateID:     payment.PaidBy,
		InterviewerID:   slot.InterviewerID,
		SlotID:          &slotID,
		InterviewType:   slot.InterviewType,
		ScheduledAt:     slot.StartTime,
		DurationMinutes: int(slot.EndTime.Sub(slot.StartTime).Round(time.Minute).Minutes()),
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		Status:          model.InterviewStatusScheduled,
		PaymentID:       &payment.ID,
		MeetingLink:     s.meetingLink(),
	}

	booking := newSaga("complete pre-booking", s.logger,
		sagaStep{
			name: "create interview",
			run: func(ctx context.Context) error {
				return s.interviews.Create(ctx, interview)
			},
			compensate: func(ctx context.Context) error {
				return s.interviews.Delete(ctx, interview.ID)
			},
		},
		sagaStep{
			name: "reserve slot",
			run: func(ctx context.Context) error {
				err := s.slots.Reserve(ctx, slotID, interview.ID)
				if errors.Is(err, apperr.ErrAlreadyBooked) {
					return apperr.Conflict("slot %d just got taken", slotID)
				}
				return err
			},
			compensate: func(ctx context.Context) error {
				return s.slots.Release(ctx, slotID)
			},
		},
		sagaStep{
			name: "link payment",
			run: func(ctx context.Context) error {
				return s.payments.LinkToInterview(ctx, paymentID, interview.ID)
			},
			compensate: func(ctx context.Context) error {
				return s.payments.UnlinkFromInterview(ctx, paymentID, slotID)
			},
		},
	)

	if err := s.tx.WithinTx(ctx, booking.Run); err != nil {
		s.logger.Warn("Booking failed",
			zap.Int64("slot_id", slotID),
			zap.Int64("payment_id", paymentID),
			zap.Error(err))
		return nil, apperr.Storage("complete booking", err)
	}

	s.logger.Info("Interview booked",
		zap.Int64("interview_id", interview.ID),
		zap.Int64("candidate_id", interview.CandidateID),
		zap.Int64("slot_id", slotID),
		zap.Int64("payment_id", paymentID),
	)

	payment.InterviewID = &interview.ID
	payment.SlotID = nil
	payment.IsPreBooking = false

	s.scheduleReminder(ctx, interview)
	s.emit(ctx, notify.EventBookingConfirmed, interview, payment, "")
	s.emit(ctx, notify.EventPaymentSubmitted, interview, payment, "")

	return interview, nil
}

// SubmitPaymentProof records proof for a payment linked to an interview:
// the first proof of a direct booking or a resubmission after rejection
func (s *BookingService) SubmitPaymentProof(ctx context.Context, actor model.Actor, paymentID int64, transactionID, screenshotURL string) (*model.Payment, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionPay, Resource{PayerID: payment.PaidBy}) {
		return nil, apperr.Unauthorized("payment %d belongs to another user", paymentID)
	}
	if payment.InterviewID == nil {
		return nil, apperr.Validation("payment %d books a slot, complete the booking instead", paymentID)
	}

	interview, err := s.getInterview(ctx, *payment.InterviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status == model.InterviewStatusCancelled {
		return nil, apperr.InvalidState("interview %d is cancelled", interview.ID)
	}

	payment, err = s.payments.SubmitProof(ctx, paymentID, actor.UserID, transactionID, screenshotURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment proof submitted",
		zap.Int64("payment_id", paymentID),
		zap.Int64("interview_id", interview.ID),
		zap.Int64("payer_id", actor.UserID),
	)

	s.emit(ctx, notify.EventPaymentSubmitted, interview, payment, "")

	return payment, nil
}

// BookDirect books an interview without a slot; payment is requested afterwards
func (s *BookingService) BookDirect(ctx context.Context, actor model.Actor, interviewerID int64, scheduledAt time.Time, durationMinutes int, interviewType model.InterviewType) (*model.Interview, error) {
	if !CanAct(actor, ActionBook, Resource{CandidateID: actor.UserID, InterviewerID: interviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot book interviewer %d", actor.UserID, interviewerID)
	}

	if !interviewType.Valid() {
		return nil, apperr.Validation("unknown interview type %q", interviewType)
	}
	diff := time.Duration(durationMinutes)*time.Minute - interviewType.Duration()
	if diff < -model.SlotDurationTolerance || diff > model.SlotDurationTolerance {
		return nil, apperr.Validation("%s interviews are %d minutes long", interviewType, int(interviewType.Duration().Minutes()))
	}
	if !scheduledAt.After(s.now()) {
		return nil, apperr.Validation("interview must be scheduled in the future")
	}

	interviewer, err := s.getUser(ctx, interviewerID)
	if err != nil {
		return nil, err
	}
	if interviewer.Role != model.RoleInterviewer {
		return nil, apperr.Validation("user %d is not an interviewer", interviewerID)
	}

	price, err := s.prices.GetPrice(ctx, interviewType)
	if err != nil {
		return nil, err
	}

	interview := &model.Interview{
		CandidateID:     actor.UserID,
		InterviewerID:   interviewerID,
		InterviewType:   interviewType,
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Amount:          price.Amount,
		Currency:        price.Currency,
		Status:          model.InterviewStatusScheduled,
		MeetingLink:     s.meetingLink(),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.interviews.LockCandidate(ctx, actor.UserID); err != nil {
			return err
		}

		blocking, err := s.interviews.ListWithUnresolvedPayment(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if len(blocking) > 0 {
			return apperr.PendingPaymentExists(blocking)
		}

		return s.interviews.Create(ctx, interview)
	})
	if err != nil {
		return nil, apperr.Storage("book interview", err)
	}

	s.logger.Info("Interview booked directly",
		zap.Int64("interview_id", interview.ID),
		zap.Int64("candidate_id", actor.UserID),
		zap.Int64("interviewer_id", interviewerID),
	)

	s.scheduleReminder(ctx, interview)
	s.emit(ctx, notify.EventBookingConfirmed, interview, nil, "")

	return interview, nil
}

// CreatePaymentRequest opens the payment of a directly booked interview
func (s *BookingService) CreatePaymentRequest(ctx context.Context, actor model.Actor, interviewID int64) (*model.PaymentInstructions, error) {
	interview, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionPay, Resource{PayerID: interview.CandidateID}) {
		return nil, apperr.Unauthorized("only the candidate pays for interview %d", interviewID)
	}
	if interview.Status == model.InterviewStatusCancelled {
		return nil, apperr.InvalidState("interview %d is cancelled", interviewID)
	}

	interviewer, err := s.getUser(ctx, interview.InterviewerID)
	if err != nil {
		return nil, err
	}

	var payment *model.Payment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.payments.CreatePending(ctx, interview.CandidateID, interview.Amount, interview.Currency, PaymentTarget{InterviewID: interviewID})
		if err != nil {
			return err
		}
		payment = p
		return s.interviews.SetPayment(ctx, interviewID, p.ID)
	})
	if err != nil {
		return nil, apperr.Storage("create payment request", err)
	}

	s.logger.Info("Payment requested",
		zap.Int64("interview_id", interviewID),
		zap.Int64("payment_id", payment.ID),
	)

	return paymentInstructions(payment, interviewer), nil
}

// VerifyPayment settles a submitted payment on behalf of the interviewer or an admin
func (s *BookingService) VerifyPayment(ctx context.Context, actor model.Actor, paymentID int64, approved bool, reason string) (*model.Payment, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var interview *model.Interview
	res := Resource{PayerID: payment.PaidBy}
	switch {
	case payment.InterviewID != nil:
		interview, err = s.getInterview(ctx, *payment.InterviewID)
		if err != nil {
			return nil, err
		}
		res.InterviewerID = interview.InterviewerID
	case payment.SlotID != nil:
		slot, err := s.getSlot(ctx, *payment.SlotID)
		if err != nil {
			return nil, err
		}
		res.InterviewerID = slot.InterviewerID
	}

	if !CanAct(actor, ActionVerifyPayment, res) {
		return nil, apperr.Unauthorized("user %d cannot verify payment %d", actor.UserID, paymentID)
	}

	payment, err = s.payments.Verify(ctx, paymentID, actor.UserID, approved, reason)
	if err != nil {
		return nil, err
	}

	event := s.newEvent(ctx, notify.EventPaymentVerified, interview, payment, reason)
	if event.Candidate == nil {
		event.Candidate = s.lookupUser(ctx, payment.PaidBy)
	}
	s.notifier.Notify(ctx, event)

	return payment, nil
}

// Cancel cancels a scheduled interview on behalf of a participant or an admin
func (s *BookingService) Cancel(ctx context.Context, actor model.Actor, interviewID int64, reason string) (*model.Interview, error) {
	interview, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionCancel, Resource{CandidateID: interview.CandidateID, InterviewerID: interview.InterviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot cancel interview %d", actor.UserID, interviewID)
	}
	if interview.Status != model.InterviewStatusScheduled {
		return nil, apperr.InvalidState("interview %d is %s, only scheduled interviews can be cancelled", interviewID, interview.Status)
	}

	return s.cancel(ctx, actor, interview, []model.InterviewStatus{model.InterviewStatusScheduled}, reason)
}

// UpdateStatus moves an interview along its lifecycle on behalf of the interviewer or an admin
func (s *BookingService) UpdateStatus(ctx context.Context, actor model.Actor, interviewID int64, status model.InterviewStatus, reason string) (*model.Interview, error) {
	interview, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionUpdateStatus, Resource{InterviewerID: interview.InterviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot update interview %d", actor.UserID, interviewID)
	}

	var from []model.InterviewStatus
	switch status {
	case model.InterviewStatusCancelled:
		from = []model.InterviewStatus{model.InterviewStatusScheduled, model.InterviewStatusInProgress}
		if !containsStatus(from, interview.Status) {
			return nil, apperr.InvalidState("interview %d is %s", interviewID, interview.Status)
		}
		return s.cancel(ctx, actor, interview, from, reason)
	case model.InterviewStatusInProgress:
		from = []model.InterviewStatus{model.InterviewStatusScheduled}
	case model.InterviewStatusCompleted:
		from = []model.InterviewStatus{model.InterviewStatusInProgress}
	default:
		return nil, apperr.Validation("cannot move interview to %q", status)
	}

	ok, err := s.interviews.TransitionStatus(ctx, interviewID, from, status)
	if err != nil {
		return nil, apperr.Storage("update interview status", err)
	}
	if !ok {
		return nil, apperr.InvalidState("interview %d cannot move from %s to %s", interviewID, interview.Status, status)
	}

	s.logger.Info("Interview status updated",
		zap.Int64("interview_id", interviewID),
		zap.String("from", string(interview.Status)),
		zap.String("to", string(status)),
		zap.Int64("updated_by", actor.UserID),
	)

	return s.getInterview(ctx, interviewID)
}

// AssignProblem sets the problem statement and starts the interview
func (s *BookingService) AssignProblem(ctx context.Context, actor model.Actor, interviewID int64, problem string) (*model.Interview, error) {
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, apperr.Validation("problem statement is required")
	}

	return s.interviewerUpdate(ctx, actor, interviewID, "assign problem", func(ctx context.Context) (bool, error) {
		return s.interviews.AssignProblem(ctx, interviewID, problem)
	})
}

// SubmitFeedback records the interviewer's rating and completes the interview
func (s *BookingService) SubmitFeedback(ctx context.Context, actor model.Actor, interviewID int64, rating int, comments string) (*model.Interview, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	return s.interviewerUpdate(ctx, actor, interviewID, "submit feedback", func(ctx context.Context) (bool, error) {
		return s.interviews.SaveFeedback(ctx, interviewID, rating, strings.TrimSpace(comments))
	})
}

// AddRecording stores the recording link and completes the interview
func (s *BookingService) AddRecording(ctx context.Context, actor model.Actor, interviewID int64, recordingURL string) (*model.Interview, error) {
	u, err := url.Parse(strings.TrimSpace(recordingURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Validation("recording URL must be an http(s) link")
	}

	return s.interviewerUpdate(ctx, actor, interviewID, "add recording", func(ctx context.Context) (bool, error) {
		return s.interviews.SaveRecording(ctx, interviewID, u.String())
	})
}

// GetInterview returns an interview its participants (or an admin) may see
func (s *BookingService) GetInterview(ctx context.Context, actor model.Actor, interviewID int64) (*model.Interview, error) {
	interview, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !CanAct(actor, ActionView, Resource{CandidateID: interview.CandidateID, InterviewerID: interview.InterviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot view interview %d", actor.UserID, interviewID)
	}
	return interview, nil
}

// FireReminder sends the pre-interview reminder if the interview is still scheduled
func (s *BookingService) FireReminder(ctx context.Context, interviewID int64) error {
	interview, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return apperr.Storage("get interview", err)
	}
	if interview == nil || interview.Status != model.InterviewStatusScheduled {
		s.logger.Debug("Reminder skipped", zap.Int64("interview_id", interviewID))
		return nil
	}

	s.emit(ctx, notify.EventInterviewReminder, interview, nil, "")

	s.logger.Info("Reminder fired", zap.Int64("interview_id", interviewID))
	return nil
}

func (s *BookingService) cancel(ctx context.Context, actor model.Actor, interview *model.Interview, from []model.InterviewStatus, reason string) (*model.Interview, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.interviews.Cancel(ctx, interview.ID, from, actor.UserID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidState("interview %d is no longer %s", interview.ID, interview.Status)
		}
		if interview.SlotID != nil {
			return s.slots.Release(ctx, *interview.SlotID)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("cancel interview", err)
	}

	if err := s.reminders.Cancel(ctx, interview.ID); err != nil {
		s.logger.Error("Failed to cancel reminder",
			zap.Int64("interview_id", interview.ID),
			zap.Error(err))
	}

	cancelled, err := s.getInterview(ctx, interview.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Interview cancelled",
		zap.Int64("interview_id", interview.ID),
		zap.Int64("cancelled_by", actor.UserID),
		zap.String("reason", reason),
	)

	s.emit(ctx, notify.EventBookingCancelled, cancelled, nil, reason)

	return cancelled, nil
}

func (s *BookingService) interviewerUpdate(ctx context.Context, actor model.Actor, interviewID int64, op string, update func(ctx context.Context) (bool, error)) (*model.Interview, error) {
	interview, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if !CanAct(actor, ActionUpdateStatus, Resource{InterviewerID: interview.InterviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot %s for interview %d", actor.UserID, op, interviewID)
	}

	ok, err := update(ctx)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if !ok {
		return nil, apperr.InvalidState("cannot %s while interview %d is %s", op, interviewID, interview.Status)
	}

	updated, err := s.getInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Interview updated",
		zap.Int64("interview_id", interviewID),
		zap.String("op", op),
		zap.String("status", string(updated.Status)),
	)

	return updated, nil
}

// scheduleReminder never fails the booking; a reminder already due is skipped
func (s *BookingService) scheduleReminder(ctx context.Context, interview *model.Interview) {
	fireAt := interview.ScheduledAt.Add(-s.settings.ReminderLead)
	if !fireAt.After(s.now()) {
		s.logger.Debug("Reminder not scheduled, interview starts too soon",
			zap.Int64("interview_id", interview.ID))
		return
	}

	if err := s.reminders.Schedule(ctx, interview.ID, fireAt); err != nil {
		s.logger.Error("Failed to schedule reminder",
			zap.Int64("interview_id", interview.ID),
			zap.Time("fire_at", fireAt),
			zap.Error(err))
	}
}

func (s *BookingService) newEvent(ctx context.Context, t notify.EventType, interview *model.Interview, payment *model.Payment, reason string) notify.Event {
	var candidate, interviewer *model.User
	if interview != nil {
		candidate = s.lookupUser(ctx, interview.CandidateID)
		interviewer = s.lookupUser(ctx, interview.InterviewerID)
	}

	e := notify.NewEvent(t, interview, candidate, interviewer, payment)
	e.Reason = reason
	return e
}

func (s *BookingService) emit(ctx context.Context, t notify.EventType, interview *model.Interview, payment *model.Payment, reason string) {
	s.notifier.Notify(ctx, s.newEvent(ctx, t, interview, payment, reason))
}

// lookupUser loads a user for a notification; failures only cost the snapshot
func (s *BookingService) lookupUser(ctx context.Context, id int64) *model.User {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load user for notification", zap.Int64("user_id", id), zap.Error(err))
		return nil
	}
	return user
}

func (s *BookingService) meetingLink() string {
	return strings.TrimRight(s.settings.MeetingBaseURL, "/") + "/" + uuid.NewString()
}

func (s *BookingService) getSlot(ctx context.Context, id int64) (*model.Slot, error) {
	return s.slots.GetSlot(ctx, id)
}

func (s *BookingService) getInterview(ctx context.Context, id int64) (*model.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("get interview", err)
	}
	if interview == nil {
		return nil, apperr.NotFound("interview %d not found", id)
	}
	return interview, nil
}

func (s *BookingService) getUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("get user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user %d not found", id)
	}
	return user, nil
}

// paymentInstructions builds the UPI deep link a candidate pays with
func paymentInstructions(p *model.Payment, payee *model.User) *model.PaymentInstructions {
	upiID := ""
	if payee.UPIID != nil {
		upiID = *payee.UPIID
	}
	name := payee.Name
	if payee.UPIPayeeName != nil && *payee.UPIPayeeName != "" {
		name = *payee.UPIPayeeName
	}

	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", name)
	q.Set("am", fmt.Sprintf("%d.%02d", p.Amount/100, p.Amount%100))
	q.Set("cu", p.Currency)
	q.Set("tn", "s30mocks "+p.Reference.String())

	return &model.PaymentInstructions{
		Payment:   p,
		UPIID:     upiID,
		PayeeName: name,
		UPILink:   "upi://pay?" + q.Encode(),
	}
}

func containsStatus(statuses []model.InterviewStatus, status model.InterviewStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
