// Package notify delivers staff notifications over Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

// ErrNoToken is returned when no bot token is configured.
var ErrNoToken = errors.New("telegram bot token missing")

// messenger is the part of *telebot.Bot used for delivery.
type messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelegramSender posts plain text messages to chats.
type TelegramSender struct {
	bot messenger
}

// NewTelegramSender builds a sender from a bot token. The bot runs
// offline: it only sends, so no poller is started.
func NewTelegramSender(token string, timeout time.Duration) (*TelegramSender, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

// Send delivers text to chatID.
func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		DisableWebPagePreview: true,
		ParseMode:             telebot.ModeDefault,
	})
	if err != nil {
		return fmt.Errorf("send telegram message to %d: %w", chatID, err)
	}
	return nil
}
