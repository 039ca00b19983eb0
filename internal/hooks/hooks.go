// Package hooks holds the extension points around a clearing pass: signals
// fired before and after, a filter over the action list, and a filter that
// decides whether skipped actions are reported.
package hooks

import (
	"context"
	"sync"

	"nathanbeddoewebdev/ccev/internal/domain"
)

// FilterEnv is what an action filter may inspect.
type FilterEnv struct {
	// ActivePlugins lists the plugin files reported active on the site,
	// e.g. "wp-rocket/wp-rocket.php".
	ActivePlugins []string
}

// PluginActive reports whether any of the given plugin files is active.
func (e FilterEnv) PluginActive(files ...string) bool {
	for _, active := range e.ActivePlugins {
		for _, f := range files {
			if active == f {
				return true
			}
		}
	}
	return false
}

// ActionFilter may add, remove, or modify actions. It receives a copy.
type ActionFilter func(actions []domain.Action, env FilterEnv) []domain.Action

// BeforeFunc runs once when a pass starts.
type BeforeFunc func(ctx context.Context)

// AfterFunc runs once when a pass finishes, with the final result map.
type AfterFunc func(ctx context.Context, results map[string]domain.Result)

// ShowSkippedFunc receives the current decision and returns a new one.
type ShowSkippedFunc func(show bool) bool

// Hooks is safe for concurrent registration and dispatch.
type Hooks struct {
	mu          sync.RWMutex
	before      []BeforeFunc
	after       []AfterFunc
	filters     []ActionFilter
	showSkipped []ShowSkippedFunc
}

func New() *Hooks { return &Hooks{} }

func (h *Hooks) OnBefore(fn BeforeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before = append(h.before, fn)
}

func (h *Hooks) OnAfter(fn AfterFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.after = append(h.after, fn)
}

func (h *Hooks) AddActionFilter(fn ActionFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filters = append(h.filters, fn)
}

func (h *Hooks) AddShowSkippedFilter(fn ShowSkippedFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.showSkipped = append(h.showSkipped, fn)
}

// FireBefore runs every before hook in registration order.
func (h *Hooks) FireBefore(ctx context.Context) {
	if h == nil {
		return
	}
	h.mu.RLock()
	fns := append([]BeforeFunc(nil), h.before...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

// FireAfter runs every after hook in registration order.
func (h *Hooks) FireAfter(ctx context.Context, results map[string]domain.Result) {
	if h == nil {
		return
	}
	h.mu.RLock()
	fns := append([]AfterFunc(nil), h.after...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, results)
	}
}

// FilterActions passes actions through every registered filter in order.
func (h *Hooks) FilterActions(actions []domain.Action, env FilterEnv) []domain.Action {
	if h == nil {
		return actions
	}
	h.mu.RLock()
	fns := append([]ActionFilter(nil), h.filters...)
	h.mu.RUnlock()
	for _, fn := range fns {
		actions = fn(append([]domain.Action(nil), actions...), env)
	}
	return actions
}

// ShowSkipped resolves whether skipped actions should be listed in notices,
// starting from def.
func (h *Hooks) ShowSkipped(def bool) bool {
	if h == nil {
		return def
	}
	h.mu.RLock()
	fns := append([]ShowSkippedFunc(nil), h.showSkipped...)
	h.mu.RUnlock()
	show := def
	for _, fn := range fns {
		show = fn(show)
	}
	return show
}
