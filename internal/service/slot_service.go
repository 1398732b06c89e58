package service

import (
	"context"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/apperr"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"go.uber.org/zap"
)

type SlotService struct {
	tx     TxRunner
	slots  SlotStore
	users  UserStore
	prices *PriceService
	now    func() time.Time
	logger *zap.Logger
}

func NewSlotService(tx TxRunner, slots SlotStore, users UserStore, prices *PriceService, logger *zap.Logger) *SlotService {
	return &SlotService{
		tx:     tx,
		slots:  slots,
		users:  users,
		prices: prices,
		now:    time.Now,
		logger: logger,
	}
}

// SlotInput is one slot of a bulk import. End defaults to Start plus the type's duration.
type SlotInput struct {
	Start time.Time
	End   time.Time
	Type  model.InterviewType
}

// ImportResult reports the outcome of one imported slot
type ImportResult struct {
	Input SlotInput
	Slot  *model.Slot
	Err   error
}

// CreateSlot publishes a new bookable slot for the interviewer
func (s *SlotService) CreateSlot(ctx context.Context, actor model.Actor, interviewerID int64, start, end time.Time, interviewType model.InterviewType) (*model.Slot, error) {
	if !CanAct(actor, ActionCreateSlot, Resource{InterviewerID: interviewerID}) {
		return nil, apperr.Unauthorized("user %d cannot create slots for interviewer %d", actor.UserID, interviewerID)
	}

	if err := s.validateSlot(start, end, interviewType); err != nil {
		return nil, err
	}

	interviewer, err := s.users.GetByID(ctx, interviewerID)
	if err != nil {
		return nil, apperr.Storage("get interviewer", err)
	}
	if interviewer == nil {
		return nil, apperr.NotFound("interviewer %d not found", interviewerID)
	}
	if interviewer.Role != model.RoleInterviewer {
		return nil, apperr.Validation("user %d is not an interviewer", interviewerID)
	}

	slot := &model.Slot{
		InterviewerID: interviewerID,
		StartTime:     start,
		EndTime:       end,
		InterviewType: interviewType,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.slots.LockInterviewer(ctx, interviewerID); err != nil {
			return err
		}

		overlapping, err := s.slots.FindOverlapping(ctx, interviewerID, start, end)
		if err != nil {
			return err
		}
		if overlapping != nil {
			return apperr.Conflict("slot overlaps slot %d (%s - %s)",
				overlapping.ID,
				overlapping.StartTime.Format(time.RFC3339),
				overlapping.EndTime.Format(time.RFC3339))
		}

		return s.slots.Create(ctx, slot)
	})
	if err != nil {
		return nil, apperr.Storage("create slot", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("interviewer_id", interviewerID),
		zap.String("type", string(interviewType)),
		zap.Time("start", start),
	)

	return slot, nil
}

func (s *SlotService) validateSlot(start, end time.Time, interviewType model.InterviewType) error {
	if !interviewType.Valid() {
		return apperr.Validation("unknown interview type %q", interviewType)
	}
	if !end.After(start) {
		return apperr.Validation("slot must end after it starts")
	}

	diff := end.Sub(start) - interviewType.Duration()
	if diff < 0 {
		diff = -diff
	}
	if diff > model.SlotDurationTolerance {
		return apperr.Validation("%s slots must be %d minutes long", interviewType, int(interviewType.Duration().Minutes()))
	}

	if !start.After(s.now()) {
		return apperr.Validation("slot must start in the future")
	}

	return nil
}

// Reserve books a free slot for the interview
func (s *SlotService) Reserve(ctx context.Context, slotID, interviewID int64) error {
	ok, err := s.slots.Reserve(ctx, slotID, interviewID)
	if err != nil {
		return apperr.Storage("reserve slot", err)
	}
	if ok {
		return nil
	}

	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return apperr.Storage("get slot", err)
	}
	if slot == nil {
		return apperr.NotFound("slot %d not found", slotID)
	}
	return apperr.AlreadyBooked(slotID)
}

// Release frees the slot; releasing a free slot is a no-op
func (s *SlotService) Release(ctx context.Context, slotID int64) error {
	if err := s.slots.Release(ctx, slotID); err != nil {
		return apperr.Storage("release slot", err)
	}
	return nil
}

// ListAvailable returns free future slots with their current price
func (s *SlotService) ListAvailable(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	if filter.InterviewType != "" && !filter.InterviewType.Valid() {
		return nil, apperr.Validation("unknown interview type %q", filter.InterviewType)
	}

	slots, err := s.slots.ListAvailable(ctx, filter, s.now())
	if err != nil {
		return nil, apperr.Storage("list slots", err)
	}

	prices := make(map[model.InterviewType]*model.Price)
	for _, slot := range slots {
		price, seen := prices[slot.InterviewType]
		if !seen {
			price, err = s.prices.GetPrice(ctx, slot.InterviewType)
			if err != nil {
				if apperr.KindOf(err) != apperr.KindNotFound {
					return nil, err
				}
				s.logger.Warn("Slot listed without price", zap.String("type", string(slot.InterviewType)))
			}
			prices[slot.InterviewType] = price
		}
		slot.Price = price
	}

	return slots, nil
}

// GetSlot returns the slot or NotFound
func (s *SlotService) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, apperr.Storage("get slot", err)
	}
	if slot == nil {
		return nil, apperr.NotFound("slot %d not found", slotID)
	}
	return slot, nil
}

// DeleteSlot removes a slot nobody booked
func (s *SlotService) DeleteSlot(ctx context.Context, actor model.Actor, slotID int64) error {
	slot, err := s.GetSlot(ctx, slotID)
	if err != nil {
		return err
	}

	if !CanAct(actor, ActionDeleteSlot, Resource{InterviewerID: slot.InterviewerID}) {
		return apperr.Unauthorized("user %d cannot delete slot %d", actor.UserID, slotID)
	}

	if slot.IsBooked {
		return apperr.InvalidState("slot %d is booked", slotID)
	}

	deleted, err := s.slots.DeleteUnbooked(ctx, slotID)
	if err != nil {
		return apperr.Storage("delete slot", err)
	}
	if !deleted {
		return apperr.InvalidState("slot %d is booked", slotID)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("deleted_by", actor.UserID))

	return nil
}

// ImportSlots creates many slots. A failed row does not stop the others.
func (s *SlotService) ImportSlots(ctx context.Context, actor model.Actor, interviewerID int64, inputs []SlotInput) []ImportResult {
	results := make([]ImportResult, 0, len(inputs))

	for _, in := range inputs {
		if in.End.IsZero() {
			in.End = in.Start.Add(in.Type.Duration())
		}

		slot, err := s.CreateSlot(ctx, actor, interviewerID, in.Start, in.End, in.Type)
		results = append(results, ImportResult{Input: in, Slot: slot, Err: err})
	}

	return results
}
