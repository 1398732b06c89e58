package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// messageSender is the part of *bot.Bot the sender needs
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSender sends events as Telegram direct messages
type TelegramSender struct {
	bot    messageSender
	logger *zap.Logger
}

// NewTelegramBot creates a send-only bot client
func NewTelegramBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

func NewTelegramSender(b messageSender, logger *zap.Logger) *TelegramSender {
	return &TelegramSender{bot: b, logger: logger}
}

func (s *TelegramSender) Name() string {
	return "telegram"
}

// Send messages every recipient that linked Telegram
func (s *TelegramSender) Send(ctx context.Context, e Event, to []Recipient) error {
	var errs []error

	for _, r := range to {
		if r.TelegramID == 0 {
			continue
		}

		subject, body := Render(e, r)
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: r.TelegramID,
			Text:   "🔔 " + subject + "\n\n" + body,
		})
		if err != nil {
			s.logger.Warn("Failed to send telegram message",
				zap.Int64("chat_id", r.TelegramID),
				zap.String("event_id", e.ID.String()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", r.TelegramID, err))
		}
	}

	return errors.Join(errs...)
}
