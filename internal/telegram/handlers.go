package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// handleMenu answers an on-demand menu command. Any fetch failure yields a
// single "menu unavailable" reply; users never see retry loops.
func (r *Router) handleMenu(ctx context.Context, chatID int64, day domain.Date, lang domain.Language) {
	fctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	text, err := r.menu.FetchText(fctx, day, lang)
	if err != nil {
		if !errors.Is(err, domain.ErrMenuUnavailable) {
			r.log.Error("menu fetch failed", zap.String("date", day.String()), zap.Error(err))
		}
		r.reply(chatID, menuUnavailableText)
		return
	}
	r.replyMarkdown(chatID, text)
}

func (r *Router) handleSubscribe(ctx context.Context, chatID int64) {
	if err := r.repo.Subscribe(ctx, chatID); err != nil {
		r.log.Error("subscribe failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.reply(chatID, internalErrorText)
		return
	}
	r.reply(chatID, fmt.Sprintf(subscribedFmt, r.notifyTime))
}

func (r *Router) handleUnsubscribe(ctx context.Context, chatID int64) {
	if _, err := r.repo.Get(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.reply(chatID, notSubscribedText)
			return
		}
		r.log.Error("unsubscribe lookup failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.reply(chatID, internalErrorText)
		return
	}
	if err := r.repo.Unsubscribe(ctx, chatID); err != nil {
		r.log.Error("unsubscribe failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.reply(chatID, internalErrorText)
		return
	}
	r.reply(chatID, unsubscribedText)
}

func (r *Router) handleStatus(ctx context.Context, chatID int64) {
	_, err := r.repo.Get(ctx, chatID)
	switch {
	case err == nil:
		r.reply(chatID, fmt.Sprintf(statusOnFmt, r.notifyTime))
	case errors.Is(err, domain.ErrNotFound):
		r.reply(chatID, statusOffText)
	default:
		r.log.Error("status lookup failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.reply(chatID, internalErrorText)
	}
}

// handleInlineQuery answers with the day's menu in each language plus the
// opening hours, mirroring the command set.
func (r *Router) handleInlineQuery(ctx context.Context, q *tgbotapi.InlineQuery) {
	fctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	today := domain.Today(r.now(), r.loc)
	var results []interface{}
	for _, item := range []struct {
		title string
		lang  domain.Language
	}{
		{"food", domain.LangAll},
		{"fooden", domain.LangEnglish},
		{"foodfi", domain.LangFinnish},
	} {
		text, err := r.menu.FetchText(fctx, today, item.lang)
		if err != nil {
			text = menuUnavailableText
		}
		results = append(results,
			tgbotapi.NewInlineQueryResultArticleMarkdown(uuid.NewString(), item.title, text))
	}
	results = append(results,
		tgbotapi.NewInlineQueryResultArticleMarkdown(uuid.NewString(), "open", openText))

	if _, err := r.api.Request(tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		Results:       results,
	}); err != nil {
		r.log.Error("inline query answer failed", zap.String("queryID", q.ID), zap.Error(err))
	}
}
