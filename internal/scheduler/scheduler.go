// Package scheduler fires a callback once per day at a configured local
// time, surviving DST shifts and process restarts.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// State of the daily trigger loop.
type State int32

const (
	StateIdle State = iota
	StateWaiting
	StateFiring
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateFiring:
		return "firing"
	default:
		return "stopped"
	}
}

// FireFunc receives the local calendar date of the occurrence that fired.
type FireFunc func(ctx context.Context, day domain.Date)

// Scheduler waits for the next occurrence of a local time-of-day and invokes
// the callback, then recomputes the following occurrence. It never relies on
// a fixed 24h interval, so DST transitions shift the wait instead of the
// fire time. At-most-once-per-day delivery is the store's guard, not ours;
// the scheduler only promises to fire once per occurrence.
type Scheduler struct {
	clock  Clock
	fireAt domain.Clock
	loc    *time.Location
	fire   FireFunc
	log    *zap.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler firing at fireAt (local time in loc).
func New(clock Clock, fireAt domain.Clock, loc *time.Location, fire FireFunc, log *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		fireAt: fireAt,
		loc:    loc,
		fire:   fire,
		log:    log,
		state:  StateIdle,
		done:   make(chan struct{}),
	}
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Start begins the wait/fire loop. Calling it twice, or after Stop, is a
// no-op. If today's occurrence has already passed at start (restart after
// downtime), the callback fires immediately once for today before the
// normal cadence resumes.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.state = StateWaiting
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop cancels any pending wait without blocking. An in-flight callback
// runs to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.state = StateStopped
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)
	defer s.setState(StateStopped)

	now := s.clock.Now()

	// Catch-up: if today's local fire time is already behind us, treat
	// today as due and fire once right away. The store's date guard keeps
	// this from double-delivering when today was already handled.
	// prev tracks the last handled occurrence so the next one is always
	// strictly later, even when the clock has not visibly advanced.
	var prev time.Time

	local := now.In(s.loc)
	todays := time.Date(local.Year(), local.Month(), local.Day(), s.fireAt.Hour, s.fireAt.Minute, 0, 0, s.loc)
	if todays.Before(now) {
		s.log.Info("missed today's occurrence, firing catch-up",
			zap.String("scheduled", todays.Format(time.RFC3339)))
		s.doFire(ctx, domain.DateOf(local))
		prev = now
	}
	for {
		base := s.clock.Now()
		if !base.After(prev) {
			base = prev.Add(time.Minute)
		}
		next := domain.NextOccurrence(base, s.fireAt, s.loc)

		s.setState(StateWaiting)
		s.log.Debug("waiting for next occurrence", zap.String("next", next.Format(time.RFC3339)))

		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-s.clock.After(next.Sub(s.clock.Now())):
			s.doFire(ctx, domain.DateOf(next.In(s.loc)))
			prev = next
		}
	}
}

// doFire runs the callback for one occurrence. A panic in the callback is
// contained; a dead scheduler loop would silently end all notifications.
func (s *Scheduler) doFire(ctx context.Context, day domain.Date) {
	s.setState(StateFiring)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("fire callback panicked", zap.Any("panic", r), zap.String("date", day.String()))
		}
	}()
	s.log.Info("firing daily trigger", zap.String("date", day.String()))
	s.fire(ctx, day)
}
