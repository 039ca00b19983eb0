package custom

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/hooks"

	"github.com/sirupsen/logrus"
)

var errNoExecutor = errors.New("action has neither command nor http")

// Filter applies a File to the action list. Register Apply with
// hooks.AddActionFilter.
type Filter struct {
	file   *File
	config func() *config.Config
	client *http.Client
	log    logrus.FieldLogger
}

// NewFilter returns a Filter. cfg supplies the settings seen by when
// conditions; it may return nil.
func NewFilter(f *File, cfg func() *config.Config, client *http.Client, log logrus.FieldLogger) *Filter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg == nil {
		cfg = func() *config.Config { return nil }
	}
	return &Filter{file: f, config: cfg, client: client, log: log}
}

// Apply removes, overrides, then appends custom actions whose condition
// holds.
func (f *Filter) Apply(actions []domain.Action, env hooks.FilterEnv) []domain.Action {
	out := make([]domain.Action, 0, len(actions)+len(f.file.Actions))
	for _, a := range actions {
		if slices.Contains(f.file.Remove, a.Key) {
			continue
		}
		if o, ok := f.file.Overrides[a.Key]; ok {
			a = applyOverride(a, o)
		}
		out = append(out, a)
	}

	var cfgMap map[string]any
	for _, spec := range f.file.Actions {
		if cond, ok := f.file.conditions[spec.Key]; ok {
			if cfgMap == nil {
				cfgMap = configMap(f.config())
			}
			hold, err := cond.Eval(env.ActivePlugins, cfgMap)
			if err != nil {
				f.log.WithError(err).WithField("action", spec.Key).Warn("custom action condition failed")
				continue
			}
			if !hold {
				continue
			}
		}
		out = append(out, f.action(spec))
	}
	return out
}

func (f *Filter) action(spec ActionSpec) domain.Action {
	a := domain.Action{
		Key:            spec.Key,
		Title:          spec.Title,
		Context:        domain.RunContext(spec.Context),
		DefaultEnabled: true,
		Section:        domain.SectionCustom,
		Comments:       spec.Comments,
	}
	if spec.Default != nil {
		a.DefaultEnabled = *spec.Default
	}

	switch {
	case spec.Command != nil:
		h, err := commandHandler(spec.Command)
		if err != nil {
			a.CallbackErr = err
		} else {
			a.Callback = h
		}
	case spec.HTTP != nil:
		a.Callback = httpHandler(spec.HTTP, f.client)
	default:
		a.CallbackErr = errNoExecutor
	}
	return a
}

func applyOverride(a domain.Action, o OverrideSpec) domain.Action {
	if o.Title != "" {
		a.Title = o.Title
	}
	if o.Context != "" {
		a.Context = domain.RunContext(o.Context)
	}
	if o.Default != nil {
		a.DefaultEnabled = *o.Default
	}
	if o.Comments != "" {
		a.Comments = o.Comments
	}
	return a
}

// configMap exposes cfg to conditions under its JSON field names. The
// database DSN is left out.
func configMap(cfg *config.Config) map[string]any {
	m := map[string]any{}
	if cfg == nil {
		return m
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(data, &m)
	delete(m, "db_dsn")
	return m
}
