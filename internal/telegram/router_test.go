package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

type fakeRepo struct {
	subscribed map[int64]bool
}

func newFakeRepo() *fakeRepo { return &fakeRepo{subscribed: make(map[int64]bool)} }

func (r *fakeRepo) Subscribe(_ context.Context, chatID int64) error {
	r.subscribed[chatID] = true
	return nil
}

func (r *fakeRepo) Unsubscribe(_ context.Context, chatID int64) error {
	delete(r.subscribed, chatID)
	return nil
}

func (r *fakeRepo) Get(_ context.Context, chatID int64) (*domain.Subscriber, error) {
	if !r.subscribed[chatID] {
		return nil, domain.ErrNotFound
	}
	return &domain.Subscriber{ChatID: chatID}, nil
}

type stubMenu struct {
	texts map[domain.Language]string
	err   error
	days  []domain.Date
}

func (m *stubMenu) FetchText(_ context.Context, day domain.Date, lang domain.Language) (string, error) {
	m.days = append(m.days, day)
	if m.err != nil {
		return "", m.err
	}
	return m.texts[lang], nil
}

func testRouter(api API, repo SubscriberStore, menu MenuSource) *Router {
	loc, _ := time.LoadLocation("Europe/Helsinki")
	r := NewRouter(api, zap.NewNop(), repo, menu, loc, "10:30", time.Second)
	r.now = func() time.Time {
		return time.Date(2024, time.June, 3, 9, 0, 0, 0, loc)
	}
	return r
}

func command(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
	}}
}

func sentText(t *testing.T, api *fakeAPI, i int) tgbotapi.MessageConfig {
	t.Helper()
	require.Greater(t, len(api.sent), i)
	msg, ok := api.sent[i].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg
}

func TestFoodCommandSendsMarkdownMenu(t *testing.T) {
	api := &fakeAPI{}
	menu := &stubMenu{texts: map[domain.Language]string{domain.LangAll: "\nLohikeitto.\nSalmon soup. L, G\n"}}
	r := testRouter(api, newFakeRepo(), menu)

	r.HandleUpdate(context.Background(), command(5, "/food"))

	msg := sentText(t, api, 0)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "Salmon soup")
	require.Len(t, menu.days, 1)
	assert.Equal(t, domain.Date("2024-06-03"), menu.days[0])
}

func TestFoodenAndFoodfiPickLanguage(t *testing.T) {
	api := &fakeAPI{}
	menu := &stubMenu{texts: map[domain.Language]string{
		domain.LangEnglish: "english menu",
		domain.LangFinnish: "finnish menu",
	}}
	r := testRouter(api, newFakeRepo(), menu)

	r.HandleUpdate(context.Background(), command(5, "/fooden"))
	r.HandleUpdate(context.Background(), command(5, "/foodfi"))

	assert.Equal(t, "english menu", sentText(t, api, 0).Text)
	assert.Equal(t, "finnish menu", sentText(t, api, 1).Text)
}

func TestTomorrowCommandUsesNextDay(t *testing.T) {
	api := &fakeAPI{}
	menu := &stubMenu{texts: map[domain.Language]string{domain.LangAll: "tomorrow's menu"}}
	r := testRouter(api, newFakeRepo(), menu)

	r.HandleUpdate(context.Background(), command(5, "/tomorrow"))

	require.Len(t, menu.days, 1)
	assert.Equal(t, domain.Date("2024-06-04"), menu.days[0])
}

func TestMenuFetchFailureYieldsSingleApology(t *testing.T) {
	api := &fakeAPI{}
	menu := &stubMenu{err: errors.New("feed is down")}
	r := testRouter(api, newFakeRepo(), menu)

	r.HandleUpdate(context.Background(), command(5, "/food"))

	require.Len(t, api.sent, 1)
	assert.Equal(t, menuUnavailableText, sentText(t, api, 0).Text)
}

func TestSubscribeFlow(t *testing.T) {
	api := &fakeAPI{}
	repo := newFakeRepo()
	r := testRouter(api, repo, &stubMenu{})

	r.HandleUpdate(context.Background(), command(5, "/subscribe"))

	assert.True(t, repo.subscribed[5])
	assert.Contains(t, sentText(t, api, 0).Text, "10:30")
}

func TestUnsubscribeWithoutSubscription(t *testing.T) {
	api := &fakeAPI{}
	r := testRouter(api, newFakeRepo(), &stubMenu{})

	r.HandleUpdate(context.Background(), command(5, "/unsubscribe"))

	assert.Equal(t, notSubscribedText, sentText(t, api, 0).Text)
}

func TestUnsubscribeFlow(t *testing.T) {
	api := &fakeAPI{}
	repo := newFakeRepo()
	repo.subscribed[5] = true
	r := testRouter(api, repo, &stubMenu{})

	r.HandleUpdate(context.Background(), command(5, "/unsubscribe"))

	assert.False(t, repo.subscribed[5])
	assert.Equal(t, unsubscribedText, sentText(t, api, 0).Text)
}

func TestStatusReflectsSubscription(t *testing.T) {
	api := &fakeAPI{}
	repo := newFakeRepo()
	r := testRouter(api, repo, &stubMenu{})

	r.HandleUpdate(context.Background(), command(5, "/status"))
	assert.Equal(t, statusOffText, sentText(t, api, 0).Text)

	repo.subscribed[5] = true
	r.HandleUpdate(context.Background(), command(5, "/status"))
	assert.Contains(t, sentText(t, api, 1).Text, "subscribed")
}

func TestInlineQueryAnswersAllVariants(t *testing.T) {
	api := &fakeAPI{}
	menu := &stubMenu{texts: map[domain.Language]string{
		domain.LangAll:     "all",
		domain.LangEnglish: "en",
		domain.LangFinnish: "fi",
	}}
	r := testRouter(api, newFakeRepo(), menu)

	r.HandleUpdate(context.Background(), tgbotapi.Update{
		InlineQuery: &tgbotapi.InlineQuery{ID: "q1"},
	})

	require.Len(t, api.requests, 1)
	cfg, ok := api.requests[0].(tgbotapi.InlineConfig)
	require.True(t, ok)
	assert.Equal(t, "q1", cfg.InlineQueryID)
	assert.Len(t, cfg.Results, 4)
}
