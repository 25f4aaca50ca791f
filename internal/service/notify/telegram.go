package notify

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"sulytrack/internal/transport/kafka"
)

// sender is the part of *tele.Bot used for delivery.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier posts notifications to the admin chat.
type TelegramNotifier struct {
	bot  sender
	chat tele.Recipient
}

// NewTelegramNotifier creates an offline bot: it only sends and never polls for updates.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID), nil
}

func newTelegramNotifier(bot sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chat: &tele.Chat{ID: chatID}}
}

// Notify sends msg as HTML. Errors that retrying cannot fix are marked permanent.
func (t *TelegramNotifier) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, msg, tele.ModeHTML, tele.NoPreview)
	if err == nil {
		return nil
	}
	if errors.Is(err, tele.ErrChatNotFound) || errors.Is(err, tele.ErrBlockedByUser) || errors.Is(err, tele.ErrUnauthorized) {
		return kafka.Permanent(err)
	}
	return err
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
