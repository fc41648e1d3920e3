// Package schedule runs the sync job on a cron cadence for the watch
// command.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts standard 5-field cron expressions (minute through
// day-of-week).
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Parse validates a cron expression.
func Parse(expr string) (cron.Schedule, error) {
	return parser.Parse(expr)
}

// Runner fires a job at each tick of a cron schedule.
type Runner struct {
	sched cron.Schedule
	job   func()
	log   *slog.Logger
}

// New creates a Runner for the given cron expression.
func New(expr string, job func(), log *slog.Logger) (*Runner, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return &Runner{sched: sched, job: job, log: log}, nil
}

// Next reports when the job would fire after t.
func (r *Runner) Next(t time.Time) time.Time {
	return r.sched.Next(t)
}

// Run blocks, firing the job at each scheduled time, until ctx ends.
// The job runs on the Runner's goroutine; a slow job delays the next
// tick rather than overlapping it.
func (r *Runner) Run(ctx context.Context) error {
	for {
		next := r.sched.Next(time.Now())
		r.log.Info("next run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			r.job()
		}
	}
}
