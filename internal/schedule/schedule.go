// Package schedule runs full clearing passes on a cron expression or a
// fixed interval.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/history"
	"nathanbeddoewebdev/ccev/internal/services/clearing"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// Clearer runs a full pass.
type Clearer interface {
	ClearAll(ctx context.Context) *clearing.Report
}

// Definition parses spec as a Go duration ("6h", "30m") or, failing that,
// a five-field cron expression.
func Definition(spec string) (gocron.JobDefinition, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("schedule: empty schedule")
	}
	if d, err := time.ParseDuration(spec); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("schedule: interval must be positive, got %s", spec)
		}
		return gocron.DurationJob(d), nil
	}
	return gocron.CronJob(spec, false), nil
}

// Scheduler owns a gocron scheduler with one clearing job.
type Scheduler struct {
	s   gocron.Scheduler
	log logrus.FieldLogger
	ctx context.Context
}

// New creates a scheduler that calls c.ClearAll on spec. Overlapping runs
// are rescheduled rather than stacked.
func New(spec string, c Clearer, log logrus.FieldLogger) (*Scheduler, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	def, err := Definition(spec)
	if err != nil {
		return nil, err
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("schedule: create scheduler: %w", err)
	}

	sch := &Scheduler{s: s, log: log.WithField("schedule", spec), ctx: context.Background()}
	_, err = s.NewJob(def,
		gocron.NewTask(func() {
			ctx := history.WithTrigger(sch.ctx, history.Trigger{Source: history.SourceSchedule})
			report := c.ClearAll(ctx)
			sch.log.WithFields(logrus.Fields{
				"run_id": report.RunID,
				"failed": len(report.FailedKeys()),
			}).Info("scheduled clear finished")
		}),
		gocron.WithName("clear-all"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule: invalid schedule %q: %w", spec, err)
	}
	return sch, nil
}

// NextRun returns when the job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	jobs := s.s.Jobs()
	if len(jobs) == 0 {
		return time.Time{}, fmt.Errorf("schedule: no job")
	}
	return jobs[0].NextRun()
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.s.Start()
	if next, err := s.NextRun(); err == nil {
		s.log.WithField("next_run", next).Info("scheduler started")
	}
	<-ctx.Done()
	if err := s.s.Shutdown(); err != nil {
		return fmt.Errorf("schedule: shutdown: %w", err)
	}
	return nil
}
