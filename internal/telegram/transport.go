package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// API is the slice of *tgbotapi.BotAPI this package uses, extracted so
// tests can fake the wire.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Transport sends Markdown messages to chats and classifies failures for
// the dispatcher's retry policy.
type Transport struct {
	api API
	log *zap.Logger
}

// NewTransport creates a Transport over the given Bot API.
func NewTransport(api API, log *zap.Logger) *Transport {
	return &Transport{api: api, log: log}
}

// Send delivers text to chatID with Markdown formatting. Any failure is
// returned as a *domain.TransportError.
func (t *Transport) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Err: err}
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.api.Send(msg); err != nil {
		return classify(err)
	}
	t.log.Debug("message sent", zap.Int64("chatID", chatID))
	return nil
}

// classify maps a Bot API failure to transient or permanent. 403 means the
// chat blocked the bot or is gone; a missing chat can never come back
// either. Rate limits, server errors and network faults may succeed later.
func classify(err error) *domain.TransportError {
	if tgErr, ok := err.(*tgbotapi.Error); ok {
		switch {
		case tgErr.Code == 403:
			return &domain.TransportError{Permanent: true, Err: err}
		case tgErr.Code == 400 && strings.Contains(strings.ToLower(tgErr.Message), "chat not found"):
			return &domain.TransportError{Permanent: true, Err: err}
		}
	}
	return &domain.TransportError{Err: err}
}
