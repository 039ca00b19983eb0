package tui

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/domain"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("aborted by user")

// settingsKeys are the text settings offered by the form, in order.
var settingsKeys = []string{
	"site-url",
	"wp-path",
	"db-dsn",
	"redis-url",
	"hosting-purge-url",
	"schedule",
}

// SettingsForm lets the user edit the main settings and choose which
// actions run. It returns an edited copy of cfg; cfg itself is untouched.
func SettingsForm(cfg *config.Config, actions []domain.Action) (*config.Config, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""
	out := cloneConfig(cfg)

	values := make([]string, len(settingsKeys))
	inputs := make([]huh.Field, 0, len(settingsKeys))
	for i, name := range settingsKeys {
		spec := config.Lookup(name)
		values[i] = spec.Get(out)
		inputs = append(inputs, huh.NewInput().
			Title(spec.Name).
			Description(spec.Description).
			Value(&values[i]).
			Validate(func(v string) error {
				return spec.Set(cloneConfig(out), v)
			}))
	}

	options := actionOptions(actions, out)
	var selected []string
	for _, a := range actions {
		if out.IsEnabled(a.Key, a.DefaultEnabled) {
			selected = append(selected, a.Key)
		}
	}
	showSkipped := out.ShowSkipped

	err := huh.NewForm(
		huh.NewGroup(inputs...),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Actions").
				Description("Selected actions run on every clear.").
				Options(options...).
				Value(&selected),
			huh.NewConfirm().
				Title("Show skipped actions in notices?").
				Value(&showSkipped),
		),
	).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrAborted
		}
		return nil, err
	}

	for i, name := range settingsKeys {
		if err := config.Lookup(name).Set(out, values[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	applyEnabled(out, actions, selected)
	out.ShowSkipped = showSkipped
	return out, nil
}

// actionOptions lists the actions for the multi-select, grouped by section
// in the label.
func actionOptions(actions []domain.Action, cfg *config.Config) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(actions))
	for _, a := range actions {
		label := a.Title
		if a.Section != "" && a.Section != domain.SectionDefaults {
			label = fmt.Sprintf("%s (%s)", a.Title, a.Section)
		}
		if a.Context == domain.ContextDeferred {
			label += " [deferred]"
		}
		options = append(options, huh.NewOption(label, a.Key).Selected(cfg.IsEnabled(a.Key, a.DefaultEnabled)))
	}
	return options
}

// applyEnabled stores a switch only where the choice differs from the
// action's default, so changed defaults still reach untouched actions.
func applyEnabled(cfg *config.Config, actions []domain.Action, selected []string) {
	for _, a := range actions {
		on := slices.Contains(selected, a.Key)
		if on == a.DefaultEnabled {
			delete(cfg.Enabled, a.Key)
			continue
		}
		cfg.SetEnabled(a.Key, on)
	}
}

func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	out := *cfg
	out.Enabled = maps.Clone(cfg.Enabled)
	return &out
}
