// Package app wires configuration, storage, the Telegram router and the
// daily notification pipeline into one runnable unit.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/config"
	"github.com/robertomlsoares/hiomo-tg-bot/internal/dispatch"
	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
	"github.com/robertomlsoares/hiomo-tg-bot/internal/menu"
	"github.com/robertomlsoares/hiomo-tg-bot/internal/scheduler"
	"github.com/robertomlsoares/hiomo-tg-bot/internal/store"
	"github.com/robertomlsoares/hiomo-tg-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	loc, err := time.LoadLocation(a.cfg.TZ)
	if err != nil {
		a.log.Error("invalid timezone", zap.String("tz", a.cfg.TZ), zap.Error(err))
		return err
	}
	fireAt, err := domain.ParseClock(a.cfg.NotifyTime)
	if err != nil {
		a.log.Error("invalid notify time", zap.String("time", a.cfg.NotifyTime), zap.Error(err))
		return err
	}

	a.log.Info("starting hiomo-bot",
		zap.String("tz", a.cfg.TZ),
		zap.String("notifyTime", fireAt.String()),
		zap.String("http", a.cfg.HTTPAddr),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	menuClient := menu.NewClient(a.cfg.MenuBaseURL, a.cfg.RestaurantID, a.cfg.FetchTimeout, a.log)
	transport := telegram.NewTransport(a.bot, a.log)
	dispatcher := dispatch.New(repo, menuClient, transport, a.log, dispatch.Options{
		Workers:      a.cfg.DispatchWorkers,
		FetchTimeout: a.cfg.FetchTimeout,
		SendTimeout:  a.cfg.SendTimeout,
	})
	a.router = telegram.NewRouter(a.bot, a.log, repo, menuClient, loc, fireAt.String(), a.cfg.FetchTimeout)

	a.sched = scheduler.New(scheduler.SystemClock{}, fireAt, loc, a.fireFunc(dispatcher), a.log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	a.sched.Start(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil
		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// fireFunc builds the scheduler callback. The cycle runs on a background
// context so a shutdown does not abort in-flight deliveries; per-recipient
// timeouts bound the work instead.
func (a *App) fireFunc(dispatcher *dispatch.Dispatcher) scheduler.FireFunc {
	return func(_ context.Context, day domain.Date) {
		if a.cfg.WeekdaysOnly {
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				a.log.Info("weekend, skipping daily cycle", zap.String("date", day.String()))
				return
			}
		}
		report, err := dispatcher.RunDailyCycle(context.Background(), day)
		if err != nil {
			a.log.Error("daily cycle failed", zap.String("date", day.String()), zap.Error(err))
			return
		}
		if report.Failed > 0 {
			for chatID, reason := range report.Failures {
				a.log.Warn("delivery failed", zap.Int64("chatID", chatID), zap.String("reason", reason))
			}
		}
	}
}

func (a *App) shutdown() {
	a.sched.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.repo != nil {
		_ = a.repo.Close()
	}
}
