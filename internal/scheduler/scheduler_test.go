package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

type wait struct {
	d  time.Duration
	ch chan time.Time
}

// fakeClock hands control of time to the test: every After call is surfaced
// on waits and fires only when the test says so.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits chan wait
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, waits: make(chan wait, 4)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	w := wait{d: d, ch: make(chan time.Time, 1)}
	c.waits <- w
	return w.ch
}

func helsinki(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	return loc
}

func recvWait(t *testing.T, c *fakeClock) wait {
	t.Helper()
	select {
	case w := <-c.waits:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never armed a wait")
		return wait{}
	}
}

func recvFire(t *testing.T, fired chan domain.Date) domain.Date {
	t.Helper()
	select {
	case d := <-fired:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never fired")
		return ""
	}
}

func TestFiresAtConfiguredLocalTime(t *testing.T) {
	loc := helsinki(t)
	start := time.Date(2024, time.June, 3, 8, 0, 0, 0, loc)
	clock := newFakeClock(start)
	fired := make(chan domain.Date, 4)

	s := New(clock, domain.Clock{Hour: 10, Minute: 30}, loc,
		func(_ context.Context, d domain.Date) { fired <- d }, zap.NewNop())
	s.Start(context.Background())
	defer s.Stop()

	w := recvWait(t, clock)
	assert.Equal(t, 2*time.Hour+30*time.Minute, w.d)

	target := time.Date(2024, time.June, 3, 10, 30, 0, 0, loc)
	clock.Set(target)
	w.ch <- target

	assert.Equal(t, domain.Date("2024-06-03"), recvFire(t, fired))

	// After firing the loop re-arms for the next calendar day.
	w2 := recvWait(t, clock)
	assert.Equal(t, 24*time.Hour, w2.d)
}

func TestCatchUpFiresImmediatelyWhenTodayPassed(t *testing.T) {
	loc := helsinki(t)
	start := time.Date(2024, time.June, 3, 11, 0, 0, 0, loc)
	clock := newFakeClock(start)
	fired := make(chan domain.Date, 4)

	s := New(clock, domain.Clock{Hour: 10, Minute: 30}, loc,
		func(_ context.Context, d domain.Date) { fired <- d }, zap.NewNop())
	s.Start(context.Background())
	defer s.Stop()

	// No wait arms before the catch-up fire.
	assert.Equal(t, domain.Date("2024-06-03"), recvFire(t, fired))

	w := recvWait(t, clock)
	assert.Equal(t, 23*time.Hour+30*time.Minute, w.d)
}

func TestSpringForwardFiresExactlyOnce(t *testing.T) {
	// Helsinki skips 03:00-04:00 on 2024-03-31; a 03:30 target must fire
	// once on that day, at the first valid local time.
	loc := helsinki(t)
	start := time.Date(2024, time.March, 31, 1, 0, 0, 0, loc)
	clock := newFakeClock(start)
	fired := make(chan domain.Date, 4)

	s := New(clock, domain.Clock{Hour: 3, Minute: 30}, loc,
		func(_ context.Context, d domain.Date) { fired <- d }, zap.NewNop())
	s.Start(context.Background())
	defer s.Stop()

	w := recvWait(t, clock)
	target := start.Add(w.d)
	clock.Set(target)
	w.ch <- target

	assert.Equal(t, domain.Date("2024-03-31"), recvFire(t, fired))

	// The loop re-arms for April 1st; no second fire for March 31st.
	w2 := recvWait(t, clock)
	next := clock.Now().Add(w2.d).In(loc)
	assert.Equal(t, "2024-04-01 03:30", next.Format("2006-01-02 15:04"))
	select {
	case d := <-fired:
		t.Fatalf("unexpected second fire for %s", d)
	default:
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	loc := helsinki(t)
	clock := newFakeClock(time.Date(2024, time.June, 3, 8, 0, 0, 0, loc))
	s := New(clock, domain.Clock{Hour: 10, Minute: 30}, loc,
		func(context.Context, domain.Date) {}, zap.NewNop())
	s.Start(context.Background())
	defer s.Stop()

	recvWait(t, clock)
	s.Start(context.Background())

	select {
	case <-clock.waits:
		t.Fatal("second Start armed another wait")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StateWaiting, s.State())
}

func TestStopCancelsPendingWait(t *testing.T) {
	loc := helsinki(t)
	clock := newFakeClock(time.Date(2024, time.June, 3, 8, 0, 0, 0, loc))
	s := New(clock, domain.Clock{Hour: 10, Minute: 30}, loc,
		func(context.Context, domain.Date) {}, zap.NewNop())
	s.Start(context.Background())

	recvWait(t, clock)
	s.Stop()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after Stop")
	}
	assert.Equal(t, StateStopped, s.State())
}
