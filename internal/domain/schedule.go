package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day (hour and minute).
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (e.g. "10:30").
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Clock{}, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, errors.New("invalid minute")
	}
	return Clock{Hour: h, Minute: m}, nil
}

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// NextOccurrence returns the first instant at or after now whose local time
// in loc is c. When a DST transition skips the local time, time.Date
// normalizes it forward, so the result is the first valid occurrence of that
// day; when the local time occurs twice, the earlier instant is chosen.
func NextOccurrence(now time.Time, c Clock, loc *time.Location) time.Time {
	local := now.In(loc)
	cand := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
	if cand.Before(now) {
		cand = time.Date(local.Year(), local.Month(), local.Day()+1, c.Hour, c.Minute, 0, 0, loc)
	}
	return cand
}
