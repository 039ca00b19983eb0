// Package clearing sequences clearing passes: it lists the actions, runs each
// through the runner, fires the before and after hooks and reports.
package clearing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/history"
	"nathanbeddoewebdev/ccev/internal/hooks"
	"nathanbeddoewebdev/ccev/internal/options"
	"nathanbeddoewebdev/ccev/internal/results"
	"nathanbeddoewebdev/ccev/internal/runner"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MsgDisabled is recorded for actions switched off in settings.
const MsgDisabled = "Action disabled in settings."

// NoticeTTL is how long a pass summary waits for the next page view.
const NoticeTTL = 60 * time.Second

const noticePrefix = "notice:"

// Lister provides the current action list.
type Lister interface {
	List(ctx context.Context) []domain.Action
}

// Options configures a Service. Store and Registry are required. History,
// Notices and Hooks may be nil.
type Options struct {
	Registry Lister
	Runner   *runner.Runner
	Store    results.Store
	Hooks    *hooks.Hooks
	History  history.Repository
	Notices  options.Repository
	Log      logrus.FieldLogger

	// SiteURL feeds the rewrite rules hint in summaries.
	SiteURL string

	// LogResults logs every result of a full pass at info level.
	LogResults bool

	// ShowSkipped is the default passed through the show-skipped filter.
	ShowSkipped bool

	// Location renders payload datetimes. Nil means the local zone.
	Location *time.Location
}

// Service runs clearing passes.
type Service struct {
	registry    Lister
	runner      *runner.Runner
	store       results.Store
	hooks       *hooks.Hooks
	history     history.Repository
	notices     options.Repository
	log         logrus.FieldLogger
	siteURL     string
	logResults  atomic.Bool
	showSkipped bool
	loc         *time.Location
	newID       func() string
}

// NewService creates a Service. A nil runner gets one with no built-in
// handlers.
func NewService(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	run := opts.Runner
	if run == nil {
		run = runner.New(opts.Store, nil, log)
	}
	s := &Service{
		registry:    opts.Registry,
		runner:      run,
		store:       opts.Store,
		hooks:       opts.Hooks,
		history:     opts.History,
		notices:     opts.Notices,
		log:         log,
		siteURL:     opts.SiteURL,
		showSkipped: opts.ShowSkipped,
		loc:         opts.Location,
		newID:       uuid.NewString,
	}
	s.logResults.Store(opts.LogResults)
	return s
}

// Actions returns the current action list.
func (s *Service) Actions(ctx context.Context) []domain.Action {
	return s.registry.List(ctx)
}

// Results returns the last persisted result map.
func (s *Service) Results(ctx context.Context) (map[string]domain.Result, error) {
	return s.store.All(ctx)
}

// ShowSkipped resolves whether skipped actions belong in notices.
func (s *Service) ShowSkipped() bool {
	return s.hooks.ShowSkipped(s.showSkipped)
}

// SetLogResults toggles per-result logging for subsequent passes. It is
// safe to call while passes run.
func (s *Service) SetLogResults(on bool) { s.logResults.Store(on) }

// Payload converts res with the service's location.
func (s *Service) Payload(res domain.Result) Payload {
	return NewPayload(res, s.loc)
}

// Summarize groups a report for display with the service's settings.
func (s *Service) Summarize(r *Report) Summary {
	return Summarize(r, s.siteURL, s.ShowSkipped())
}

// runOrder puts immediate actions first and deferred ones last, keeping
// registry order within each group.
func runOrder(actions []domain.Action) []domain.Action {
	out := make([]domain.Action, 0, len(actions))
	for _, a := range actions {
		if a.Context != domain.ContextDeferred {
			out = append(out, a)
		}
	}
	for _, a := range actions {
		if a.Context == domain.ContextDeferred {
			out = append(out, a)
		}
	}
	return out
}

// ClearAll runs a full pass over every listed action. Immediate actions run
// first in registry order, then deferred ones in registry order, so the
// response-level clears come last. Failures are recorded per action and
// never abort the pass. The caller must have validated the trigger.
func (s *Service) ClearAll(ctx context.Context) *Report {
	trigger := history.TriggerFromContext(ctx)
	report := &Report{
		RunID:   s.newID(),
		Started: s.runner.Now(),
		Results: make(map[string]domain.Result),
	}
	log := s.log.WithFields(logrus.Fields{"run_id": report.RunID, "trigger": trigger.Source})

	if fixed, err := results.RecoverInterrupted(ctx, s.store, report.Started); err != nil {
		log.WithError(err).Warn("failed to recover interrupted results")
	} else if len(fixed) > 0 {
		log.WithField("actions", fixed).Warn("resolved results left running by an earlier pass")
	}

	s.hooks.FireBefore(ctx)

	report.Actions = runOrder(s.registry.List(ctx))
	for _, a := range report.Actions {
		var res domain.Result
		if !a.Enabled {
			res = s.runner.Skip(ctx, a.Key, MsgDisabled)
		} else {
			res = s.runner.Run(ctx, a)
		}
		report.Results[a.Key] = res
	}

	report.Finished = s.runner.Now()
	s.hooks.FireAfter(ctx, report.Results)

	if s.logResults.Load() {
		s.logReport(log, report)
	}
	s.record(ctx, log, trigger, report)

	log.WithFields(logrus.Fields{
		"success": report.Count(domain.StatusSuccess),
		"fail":    report.Count(domain.StatusFail),
	}).Info("clearing pass finished")
	return report
}

func (s *Service) logReport(log logrus.FieldLogger, r *Report) {
	for _, a := range r.Actions {
		res := r.Results[a.Key]
		entry := log.WithFields(logrus.Fields{
			"action":  a.Key,
			"status":  res.Status,
			"elapsed": res.Elapsed(),
		})
		if res.ErrorMessage != "" {
			entry = entry.WithField("error", res.ErrorMessage)
		}
		entry.Info("clear result")
	}
}

func (s *Service) record(ctx context.Context, log logrus.FieldLogger, t history.Trigger, r *Report) {
	if s.history == nil {
		return
	}
	entry := &history.Entry{
		RunID:      r.RunID,
		Timestamp:  r.Started.UTC(),
		Source:     t.Source,
		Subject:    t.Subject,
		Succeeded:  r.Count(domain.StatusSuccess),
		Failed:     r.Count(domain.StatusFail),
		Skipped:    r.Count(domain.StatusSkipped),
		Info:       r.Count(domain.StatusInfo),
		FailedKeys: strings.Join(r.FailedKeys(), ","),
		DurationMs: r.Finished.Sub(r.Started).Milliseconds(),
	}
	if err := s.history.Save(ctx, entry); err != nil {
		log.WithError(err).Warn("failed to record pass history")
	}
}

// RunAction runs one action on demand. Only immediate actions qualify
// unless anyContext is set. Disabled actions still run: asking for one by
// name overrides the switch.
func (s *Service) RunAction(ctx context.Context, key string, anyContext bool) (Payload, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Payload{}, fmt.Errorf("missing action key: %w", domain.ErrUnknownAction)
	}

	var (
		action domain.Action
		found  bool
	)
	for _, a := range s.registry.List(ctx) {
		if a.Key == key {
			action, found = a, true
			break
		}
	}
	if !found {
		return Payload{}, fmt.Errorf("action %q: %w", key, domain.ErrUnknownAction)
	}
	if !anyContext && action.Context != domain.ContextImmediate {
		return Payload{}, fmt.Errorf("action %q runs in the %s context: %w", key, action.Context, domain.ErrWrongContext)
	}

	return s.Payload(s.runner.Run(ctx, action)), nil
}

// RunDeferred runs every enabled deferred action. Disabled ones are left
// untouched.
func (s *Service) RunDeferred(ctx context.Context) map[string]Payload {
	out := make(map[string]Payload)
	for _, a := range s.registry.List(ctx) {
		if !a.Enabled || a.Context != domain.ContextDeferred {
			continue
		}
		out[a.Key] = s.Payload(s.runner.Run(ctx, a))
	}
	return out
}

// SaveNotice keeps a pass summary for subject's next page view.
func (s *Service) SaveNotice(ctx context.Context, subject string, sum Summary) error {
	if s.notices == nil {
		return nil
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("clearing: failed to encode notice: %w", err)
	}
	return s.notices.Set(ctx, noticePrefix+subject, string(data), NoticeTTL)
}

// TakeNotice returns and removes subject's pending notice. Each notice is
// returned at most once.
func (s *Service) TakeNotice(ctx context.Context, subject string) (Summary, bool, error) {
	if s.notices == nil {
		return Summary{}, false, nil
	}
	raw, ok, err := s.notices.Consume(ctx, noticePrefix+subject)
	if err != nil || !ok {
		return Summary{}, false, err
	}
	var sum Summary
	if err := json.Unmarshal([]byte(raw), &sum); err != nil {
		return Summary{}, false, fmt.Errorf("clearing: failed to decode notice: %w", err)
	}
	return sum, true, nil
}
