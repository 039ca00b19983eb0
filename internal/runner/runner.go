// Package runner executes one action and records its lifecycle in the
// result store: running first, then a terminal status with timings.
package runner

import (
	"context"
	"fmt"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/results"

	"github.com/sirupsen/logrus"
)

// Messages recorded when an action cannot be executed.
const (
	MsgNotCallable = "Provided callback is not callable."
	MsgNoHandler   = "No handler registered for this action."
	MsgNoStatus    = "Action returned no status."
)

// Resolver finds the built-in handler for an action key.
type Resolver func(key string) (domain.Handler, bool)

// Runner runs actions one at a time. It is safe for concurrent use as long
// as the store is.
type Runner struct {
	store   results.Store
	resolve Resolver
	log     logrus.FieldLogger
	now     func() time.Time
}

// New returns a Runner. resolve may be nil when every action carries its
// own callback.
func New(store results.Store, resolve Resolver, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if resolve == nil {
		resolve = func(string) (domain.Handler, bool) { return nil, false }
	}
	return &Runner{store: store, resolve: resolve, log: log, now: time.Now}
}

// SetClock replaces the wall clock. Intended for tests.
func (r *Runner) SetClock(now func() time.Time) { r.now = now }

// Now returns the runner's current time.
func (r *Runner) Now() time.Time { return r.now() }

// handler picks the callable for a: the developer callback, then the
// registered handler for its key.
func (r *Runner) handler(a domain.Action) (domain.Handler, string) {
	switch {
	case a.CallbackErr != nil:
		return nil, MsgNotCallable
	case a.Callback != nil:
		return a.Callback, ""
	}
	if h, ok := r.resolve(a.Key); ok && h != nil {
		return h, ""
	}
	return nil, MsgNoHandler
}

// Run executes a and returns its final record. Handler failures and panics
// become fail records; they are never returned as errors.
func (r *Runner) Run(ctx context.Context, a domain.Action) domain.Result {
	log := r.log.WithField("action", a.Key)

	h, reason := r.handler(a)
	if h == nil {
		if a.CallbackErr != nil {
			log.WithError(a.CallbackErr).Warn("callback rejected")
		}
		return r.Skip(ctx, a.Key, reason)
	}

	start := r.now()
	r.update(ctx, log, a.Key, results.Patch{
		Start:        &start,
		Status:       domain.StatusRunning,
		ErrorMessage: results.Message(""),
		ResetEnd:     true,
	})

	out := invoke(ctx, h)
	out = normalize(out)

	end := r.now()
	if end.Before(start) {
		end = start
	}
	final := domain.Result{
		Key:          a.Key,
		Start:        &start,
		End:          &end,
		Status:       out.Status,
		ErrorMessage: out.Message,
	}
	if stored, ok := r.update(ctx, log, a.Key, results.Patch{
		End:          &end,
		Status:       out.Status,
		ErrorMessage: results.Message(out.Message),
	}); ok {
		final = stored
	}

	log.WithFields(logrus.Fields{
		"status":  out.Status,
		"elapsed": end.Sub(start),
	}).Debug("action finished")
	return final
}

// Skip records key as skipped without running anything. Start and end are
// both now.
func (r *Runner) Skip(ctx context.Context, key, msg string) domain.Result {
	now := r.now()
	res := domain.Result{Key: key, Start: &now, End: &now, Status: domain.StatusSkipped, ErrorMessage: msg}
	if stored, ok := r.update(ctx, r.log.WithField("action", key), key, results.Patch{
		Start:        &now,
		End:          &now,
		Status:       domain.StatusSkipped,
		ErrorMessage: results.Message(msg),
	}); ok {
		res = stored
	}
	return res
}

func (r *Runner) update(ctx context.Context, log logrus.FieldLogger, key string, p results.Patch) (domain.Result, bool) {
	if r.store == nil {
		return domain.Result{}, false
	}
	res, err := r.store.Update(ctx, key, p)
	if err != nil {
		log.WithError(err).Error("failed to record result")
		return domain.Result{}, false
	}
	return res, true
}

func invoke(ctx context.Context, h domain.Handler) (out domain.Outcome) {
	defer func() {
		if v := recover(); v != nil {
			out = domain.Failed(fmt.Sprint(v))
		}
	}()
	return h.Clear(ctx)
}

// normalize forces a terminal status. A missing status counts as failure.
func normalize(out domain.Outcome) domain.Outcome {
	if out.Status == "" {
		msg := out.Message
		if msg == "" {
			msg = MsgNoStatus
		}
		return domain.Failed(msg)
	}
	if !out.Status.Terminal() {
		return domain.Failedf("Action returned non-terminal status %q.", out.Status)
	}
	if out.Status == domain.StatusSuccess {
		out.Message = ""
	}
	return out
}
