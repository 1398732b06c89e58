package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/jaspindersingh83/s30mocks-backend/internal/apperr"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository"
	"go.uber.org/zap"
)

var upiAddress = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z]{2,64}$`)

type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// RegisterUser creates a user or refreshes the name of an existing one
func (s *UserService) RegisterUser(ctx context.Context, email, name string, role model.Role) (*model.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, apperr.Validation("invalid e-mail address %q", email)
	}
	email = strings.ToLower(addr.Address)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Storage("check existing user", err)
	}

	if existing != nil {
		if existing.Name != name {
			existing.Name = name
			if err := s.users.Update(ctx, existing); err != nil {
				return nil, apperr.Storage("update user", err)
			}
			s.logger.Info("User updated", zap.Int64("user_id", existing.ID))
		}
		return existing, nil
	}

	user := &model.User{
		Email: email,
		Name:  name,
		Role:  role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("user %s already exists", email)
		}
		return nil, apperr.Storage("create user", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(role)),
	)

	return user, nil
}

// GetByID returns the user or NotFound
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage("get user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user %d not found", id)
	}
	return user, nil
}

// ActorByEmail resolves the operator running a CLI command
func (s *UserService) ActorByEmail(ctx context.Context, email string) (model.Actor, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return model.Actor{}, apperr.Storage("get user by email", err)
	}
	if user == nil {
		return model.Actor{}, apperr.NotFound("user %s not found", email)
	}
	return model.Actor{UserID: user.ID, Role: user.Role}, nil
}

// SetRole changes a user's role; admin only
func (s *UserService) SetRole(ctx context.Context, actor model.Actor, userID int64, role model.Role) (*model.User, error) {
	if !CanAct(actor, ActionManageUsers, Resource{UserID: userID}) {
		return nil, apperr.Unauthorized("only admins can change roles")
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Storage("update user", err)
	}

	s.logger.Info("User role changed",
		zap.Int64("user_id", userID),
		zap.String("role", string(role)),
		zap.Int64("changed_by", actor.UserID))

	return user, nil
}

// SetPaymentDetails stores the UPI id an interviewer collects payments on
func (s *UserService) SetPaymentDetails(ctx context.Context, actor model.Actor, userID int64, upiID, payeeName string) (*model.User, error) {
	if !CanAct(actor, ActionEditProfile, Resource{UserID: userID}) {
		return nil, apperr.Unauthorized("user %d cannot edit user %d", actor.UserID, userID)
	}

	upiID = strings.TrimSpace(upiID)
	payeeName = strings.TrimSpace(payeeName)
	if !upiAddress.MatchString(upiID) {
		return nil, apperr.Validation("invalid UPI id %q", upiID)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleInterviewer {
		return nil, apperr.Validation("only interviewers collect payments")
	}
	if payeeName == "" {
		payeeName = user.Name
	}

	user.UPIID = &upiID
	user.UPIPayeeName = &payeeName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Storage("update user", err)
	}

	s.logger.Info("Payment details updated", zap.Int64("user_id", userID))

	return user, nil
}

// LinkTelegram attaches a Telegram chat to the user for notifications
func (s *UserService) LinkTelegram(ctx context.Context, userID, telegramID int64) (*model.User, error) {
	if telegramID <= 0 {
		return nil, apperr.Validation("invalid telegram id")
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.TelegramID = &telegramID
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Duplicate("telegram account is linked to another user")
		}
		return nil, apperr.Storage("update user", err)
	}

	s.logger.Info("Telegram linked",
		zap.Int64("user_id", userID),
		zap.Int64("telegram_id", telegramID))

	return user, nil
}
