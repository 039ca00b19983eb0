// Package registry builds the ordered list of clearing actions: built-ins,
// integrations for plugins active on the site, then whatever the action
// filters add or change.
package registry

import (
	"context"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/hooks"
	"nathanbeddoewebdev/ccev/internal/plugins"

	"github.com/sirupsen/logrus"
)

// FlagSource resolves an action's enabled switch.
type FlagSource interface {
	Enabled(key string, def bool) bool
}

// Registry lists actions. The list is rebuilt on every call.
type Registry struct {
	detector plugins.Detector
	flags    FlagSource
	hooks    *hooks.Hooks
	log      logrus.FieldLogger
}

// New returns a Registry. A nil detector means no plugins are active.
func New(detector plugins.Detector, flags FlagSource, h *hooks.Hooks, log logrus.FieldLogger) *Registry {
	if detector == nil {
		detector = plugins.Static(nil)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{detector: detector, flags: flags, hooks: h, log: log}
}

// List returns every available action with Enabled resolved. It never
// fails: a detection error is logged and treated as no active plugins.
func (r *Registry) List(ctx context.Context) []domain.Action {
	active, err := r.detector.ActivePlugins(ctx)
	if err != nil {
		r.log.WithError(err).Warn("plugin detection failed; integrations hidden")
		active = nil
	}
	env := hooks.FilterEnv{ActivePlugins: active}

	actions := Builtins()
	for _, in := range Integrations() {
		if !env.PluginActive(in.Plugins...) {
			continue
		}
		actions = append(actions, domain.Action{
			Key:            in.Key,
			Title:          in.Title,
			Context:        domain.ContextImmediate,
			DefaultEnabled: true,
			Section:        domain.SectionIntegrations,
		})
	}

	actions = r.hooks.FilterActions(actions, env)

	seen := make(map[string]bool, len(actions))
	out := make([]domain.Action, 0, len(actions))
	for _, a := range actions {
		if a.Key == "" || seen[a.Key] {
			r.log.WithField("action", a.Key).Warn("dropping action with empty or duplicate key")
			continue
		}
		seen[a.Key] = true
		if !a.Context.Valid() {
			a.Context = domain.ContextImmediate
		}
		if a.Title == "" {
			a.Title = a.Key
		}
		a.Enabled = a.DefaultEnabled
		if r.flags != nil {
			a.Enabled = r.flags.Enabled(a.Key, a.DefaultEnabled)
		}
		out = append(out, a)
	}
	return out
}

// Find returns the action with the given key from a fresh listing.
func (r *Registry) Find(ctx context.Context, key string) (domain.Action, bool) {
	for _, a := range r.List(ctx) {
		if a.Key == key {
			return a, true
		}
	}
	return domain.Action{}, false
}
