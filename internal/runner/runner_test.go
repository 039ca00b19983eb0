package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/options"
	"nathanbeddoewebdev/ccev/internal/results"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
)

// tickClock advances one second per call.
func tickClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(time.Second)
		return now
	}
}

// recordingStore wraps a Store and keeps every status it was asked to write.
type recordingStore struct {
	results.Store
	statuses []domain.Status
}

func (s *recordingStore) Update(ctx context.Context, key string, p results.Patch) (domain.Result, error) {
	s.statuses = append(s.statuses, p.Status)
	return s.Store.Update(ctx, key, p)
}

func newRunner(t *testing.T, handlers map[string]domain.Handler) (*Runner, *recordingStore) {
	t.Helper()
	store := &recordingStore{Store: results.NewOptionStore(options.NewMemory())}
	log, _ := test.NewNullLogger()
	r := New(store, func(key string) (domain.Handler, bool) {
		h, ok := handlers[key]
		return h, ok
	}, log)
	r.SetClock(tickClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	return r, store
}

func TestRun_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.Action
		handler domain.Handler
		want    domain.Status
		wantMsg string
	}{
		{
			name:    "success",
			action:  domain.Action{Key: "a"},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Succeeded() }),
			want:    domain.StatusSuccess,
		},
		{
			name:    "failure message kept",
			action:  domain.Action{Key: "a"},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Failed("nope") }),
			want:    domain.StatusFail,
			wantMsg: "nope",
		},
		{
			name:    "info",
			action:  domain.Action{Key: "a"},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Informed("Varnish not detected.") }),
			want:    domain.StatusInfo,
			wantMsg: "Varnish not detected.",
		},
		{
			name:    "panic becomes fail",
			action:  domain.Action{Key: "a"},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { panic("kaboom") }),
			want:    domain.StatusFail,
			wantMsg: "kaboom",
		},
		{
			name:    "missing status becomes fail",
			action:  domain.Action{Key: "a"},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Outcome{} }),
			want:    domain.StatusFail,
			wantMsg: MsgNoStatus,
		},
		{
			name:    "non-terminal status becomes fail",
			action:  domain.Action{Key: "a"},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Outcome{Status: domain.StatusRunning} }),
			want:    domain.StatusFail,
			wantMsg: `Action returned non-terminal status "running".`,
		},
		{
			name: "callback wins over registered handler",
			action: domain.Action{Key: "a", Callback: domain.HandlerFunc(func(context.Context) domain.Outcome {
				return domain.Failed("from callback")
			})},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Succeeded() }),
			want:    domain.StatusFail,
			wantMsg: "from callback",
		},
		{
			name:    "uncallable callback skipped",
			action:  domain.Action{Key: "a", CallbackErr: errors.New("bad")},
			handler: domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Succeeded() }),
			want:    domain.StatusSkipped,
			wantMsg: MsgNotCallable,
		},
		{
			name:    "no handler skipped",
			action:  domain.Action{Key: "a"},
			want:    domain.StatusSkipped,
			wantMsg: MsgNoHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := map[string]domain.Handler{}
			if tt.handler != nil {
				handlers["a"] = tt.handler
			}
			r, _ := newRunner(t, handlers)

			got := r.Run(context.Background(), tt.action)
			if got.Status != tt.want || got.ErrorMessage != tt.wantMsg {
				t.Errorf("Run() = %s %q, want %s %q", got.Status, got.ErrorMessage, tt.want, tt.wantMsg)
			}
			if got.Start == nil || got.End == nil || got.End.Before(*got.Start) {
				t.Errorf("timing invariant broken: start=%v end=%v", got.Start, got.End)
			}
		})
	}
}

func TestRun_MarksRunningThenTerminal(t *testing.T) {
	var seen domain.Result
	var r *Runner
	var store *recordingStore
	r, store = newRunner(t, map[string]domain.Handler{
		"a": domain.HandlerFunc(func(ctx context.Context) domain.Outcome {
			all, _ := store.All(ctx)
			seen = all["a"]
			return domain.Succeeded()
		}),
	})

	// A stale finish time from an earlier pass must not survive the new start.
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := store.Update(context.Background(), "a", results.Patch{Start: &old, End: &old, Status: domain.StatusFail, ErrorMessage: results.Message("old")}); err != nil {
		t.Fatal(err)
	}
	store.statuses = nil

	got := r.Run(context.Background(), domain.Action{Key: "a"})

	if seen.Status != domain.StatusRunning || seen.End != nil || seen.ErrorMessage != "" {
		t.Errorf("during execution entry = %+v, want running with no end or message", seen)
	}
	if diff := cmp.Diff([]domain.Status{domain.StatusRunning, domain.StatusSuccess}, store.statuses); diff != "" {
		t.Errorf("status writes mismatch (-want +got):\n%s", diff)
	}
	if got.Elapsed() != time.Second {
		t.Errorf("Elapsed() = %v, want 1s", got.Elapsed())
	}
}

func TestSkip_StartEqualsEnd(t *testing.T) {
	r, store := newRunner(t, nil)

	got := r.Skip(context.Background(), "cookies", "Action disabled in settings.")
	if got.Start == nil || got.End == nil || !got.Start.Equal(*got.End) {
		t.Errorf("skip timing = %v / %v, want equal", got.Start, got.End)
	}

	all, err := store.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if all["cookies"].ErrorMessage != "Action disabled in settings." {
		t.Errorf("stored = %+v", all["cookies"])
	}
}

type failingStore struct{}

func (failingStore) Update(context.Context, string, results.Patch) (domain.Result, error) {
	return domain.Result{}, errors.New("disk full")
}

func (failingStore) All(context.Context) (map[string]domain.Result, error) { return nil, nil }

func TestRun_StoreErrorsDoNotAbort(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := New(failingStore{}, func(string) (domain.Handler, bool) {
		return domain.HandlerFunc(func(context.Context) domain.Outcome { return domain.Succeeded() }), true
	}, log)

	got := r.Run(context.Background(), domain.Action{Key: "a"})
	if got.Status != domain.StatusSuccess {
		t.Errorf("status = %s, want success", got.Status)
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("expected store failures to be logged")
	}
}
