// Package dispatch runs the daily notification cycle: fan out over due
// subscribers, deliver the menu, record what happened.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// Store is the slice of the subscriber repository the dispatcher needs.
type Store interface {
	ListDue(ctx context.Context, day domain.Date) ([]int64, error)
	MarkDelivered(ctx context.Context, chatID int64, day domain.Date) (bool, error)
	Unsubscribe(ctx context.Context, chatID int64) error
}

// MenuSource provides formatted menu text for a date.
type MenuSource interface {
	FetchText(ctx context.Context, day domain.Date, lang domain.Language) (string, error)
}

// Transport delivers one message to one chat. Failures are classified via
// *domain.TransportError.
type Transport interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Options tune the cycle. Zero values fall back to defaults.
type Options struct {
	Workers      int           // bounded fan-out, default 4
	FetchTimeout time.Duration // per-recipient menu fetch, default 10s
	SendTimeout  time.Duration // per-recipient send incl. retry, default 10s
	RetryDelay   time.Duration // delay before the single send retry, default 2s
}

func (o *Options) withDefaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 10 * time.Second
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 10 * time.Second
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
}

// Report summarizes one daily cycle. Failures maps chat id to the reason,
// for observability; it never aborts the batch.
type Report struct {
	Date      domain.Date
	Succeeded int
	Skipped   int
	Failed    int
	Failures  map[int64]string
}

// Dispatcher delivers the daily menu to every due subscriber, isolating
// per-recipient failures.
type Dispatcher struct {
	store     Store
	menu      MenuSource
	transport Transport
	log       *zap.Logger
	opts      Options

	mu sync.Mutex // guards report mutation during fan-out
}

// New creates a dispatcher.
func New(store Store, menu MenuSource, transport Transport, log *zap.Logger, opts Options) *Dispatcher {
	opts.withDefaults()
	return &Dispatcher{store: store, menu: menu, transport: transport, log: log, opts: opts}
}

// RunDailyCycle delivers to every subscriber still due for day. Only a
// failure to read the due set is returned as an error; everything else is
// per-recipient and lands in the report. Running the cycle twice for the
// same date is a no-op for already-delivered chats.
func (d *Dispatcher) RunDailyCycle(ctx context.Context, day domain.Date) (Report, error) {
	report := Report{Date: day, Failures: make(map[int64]string)}

	ids, err := d.store.ListDue(ctx, day)
	if err != nil {
		return report, fmt.Errorf("list due subscribers: %w", err)
	}
	if len(ids) == 0 {
		d.log.Info("no subscribers due", zap.String("date", day.String()))
		return report, nil
	}

	sem := make(chan struct{}, d.opts.Workers)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int64) {
			defer wg.Done()
			defer func() { <-sem }()
			d.deliver(ctx, id, day, &report)
		}(id)
	}
	wg.Wait()

	d.log.Info("daily cycle finished",
		zap.String("date", day.String()),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// deliver handles a single recipient end to end.
func (d *Dispatcher) deliver(ctx context.Context, chatID int64, day domain.Date, report *Report) {
	fctx, cancel := context.WithTimeout(ctx, d.opts.FetchTimeout)
	text, err := d.menu.FetchText(fctx, day, domain.LangAll)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrMenuUnavailable) {
			d.log.Info("no menu published, skipping recipient",
				zap.Int64("chatID", chatID), zap.String("date", day.String()))
			d.record(report, func(r *Report) { r.Skipped++ })
			return
		}
		d.fail(report, chatID, "menu fetch: "+err.Error())
		return
	}

	if err := d.send(ctx, chatID, text); err != nil {
		if domain.IsPermanent(err) {
			// The chat can never be reached again; drop it so every
			// following day does not produce the same failure.
			d.log.Warn("permanent transport failure, unsubscribing",
				zap.Int64("chatID", chatID), zap.Error(err))
			if uerr := d.store.Unsubscribe(ctx, chatID); uerr != nil {
				d.log.Error("auto-unsubscribe failed", zap.Int64("chatID", chatID), zap.Error(uerr))
			}
		}
		d.fail(report, chatID, "send: "+err.Error())
		return
	}

	ok, err := d.store.MarkDelivered(ctx, chatID, day)
	if err != nil {
		// Delivered but not recorded; tomorrow's guard will dedupe, but the
		// cycle must surface the storage fault.
		d.fail(report, chatID, "mark delivered: "+err.Error())
		return
	}
	if !ok {
		// Lost a race with a concurrent delivery for the same or a later date.
		d.record(report, func(r *Report) { r.Skipped++ })
		return
	}
	d.record(report, func(r *Report) { r.Succeeded++ })
}

// send attempts the transport call with a single fixed-delay retry for
// transient failures. Permanent failures short-circuit.
func (d *Dispatcher) send(ctx context.Context, chatID int64, text string) error {
	sctx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	defer cancel()

	return retry.Do(
		func() error {
			err := d.transport.Send(sctx, chatID, text)
			if err != nil && domain.IsPermanent(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Attempts(2),
		retry.Delay(d.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(sctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			d.log.Warn("send retry", zap.Int64("chatID", chatID), zap.Uint("attempt", n), zap.Error(err))
		}),
	)
}

func (d *Dispatcher) record(report *Report, f func(*Report)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f(report)
}

func (d *Dispatcher) fail(report *Report, chatID int64, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	report.Failed++
	report.Failures[chatID] = reason
}
