package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// SubscriberStore is the slice of the repository the command handlers use.
type SubscriberStore interface {
	Subscribe(ctx context.Context, chatID int64) error
	Unsubscribe(ctx context.Context, chatID int64) error
	Get(ctx context.Context, chatID int64) (*domain.Subscriber, error)
}

// MenuSource provides formatted menu text for on-demand commands.
type MenuSource interface {
	FetchText(ctx context.Context, day domain.Date, lang domain.Language) (string, error)
}

// Router wires Telegram updates to command and inline-query handlers.
type Router struct {
	api  API
	log  *zap.Logger
	repo SubscriberStore
	menu MenuSource

	loc          *time.Location
	notifyTime   string
	fetchTimeout time.Duration
	now          func() time.Time // injectable for tests
}

// NewRouter creates a router. notifyTime is shown to users in subscription
// replies (e.g. "10:30").
func NewRouter(api API, log *zap.Logger, repo SubscriberStore, menu MenuSource, loc *time.Location, notifyTime string, fetchTimeout time.Duration) *Router {
	return &Router{
		api:          api,
		log:          log,
		repo:         repo,
		menu:         menu,
		loc:          loc,
		notifyTime:   notifyTime,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.reply(chatID, startText)
		case strings.HasPrefix(text, "/help"):
			r.reply(chatID, helpText)
		case strings.HasPrefix(text, "/fooden"):
			r.handleMenu(ctx, chatID, domain.Today(r.now(), r.loc), domain.LangEnglish)
		case strings.HasPrefix(text, "/foodfi"):
			r.handleMenu(ctx, chatID, domain.Today(r.now(), r.loc), domain.LangFinnish)
		case strings.HasPrefix(text, "/food"):
			r.handleMenu(ctx, chatID, domain.Today(r.now(), r.loc), domain.LangAll)
		case strings.HasPrefix(text, "/tomorrow"):
			r.handleMenu(ctx, chatID, domain.Tomorrow(r.now(), r.loc), domain.LangAll)
		case strings.HasPrefix(text, "/open"):
			r.reply(chatID, openText)
		case strings.HasPrefix(text, "/subscribe"):
			r.handleSubscribe(ctx, chatID)
		case strings.HasPrefix(text, "/unsubscribe"):
			r.handleUnsubscribe(ctx, chatID)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, chatID)
		default:
			// Not a command we know; stay quiet.
		}
		return
	}

	if upd.InlineQuery != nil {
		r.handleInlineQuery(ctx, upd.InlineQuery)
	}
}

// reply sends plain text to a chat, logging (not propagating) send errors.
func (r *Router) reply(chatID int64, text string) {
	if _, err := r.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Error("reply failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}

// replyMarkdown sends Markdown-formatted text to a chat.
func (r *Router) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.api.Send(msg); err != nil {
		r.log.Error("reply failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}
