// Package schedule fires a callback once a week at a fixed local time.
package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Weekly computes and waits for the next weekly firing time in a given
// location. Missed slots are skipped, never backfilled: if the process
// was down on Monday morning, the next run is the following Monday.
type Weekly struct {
	day  time.Weekday
	hour int
	loc  *time.Location
	now  func() time.Time
}

type Option func(*Weekly)

func WithClock(now func() time.Time) Option {
	return func(w *Weekly) { w.now = now }
}

func NewWeekly(day time.Weekday, hour int, loc *time.Location, opts ...Option) *Weekly {
	if loc == nil {
		loc = time.UTC
	}
	w := &Weekly{day: day, hour: hour, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Next returns the first firing time strictly after the given instant.
func (w *Weekly) Next(after time.Time) time.Time {
	local := after.In(w.loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), w.hour, 0, 0, 0, w.loc)
	days := (int(w.day) - int(local.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, days)
	if !candidate.After(after) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// Run blocks until the context is cancelled, invoking fn at each weekly
// slot. The callback runs on the scheduler goroutine; a slow callback
// delays the next computation but slots are never doubled up.
func (w *Weekly) Run(ctx context.Context, fn func(context.Context)) error {
	for {
		next := w.Next(w.now())
		slog.InfoContext(ctx, "next weekly run scheduled", "at", next)

		timer := time.NewTimer(next.Sub(w.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			fn(ctx)
		}
	}
}
