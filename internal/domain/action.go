package domain

import "context"

// RunContext decides when an action executes relative to a clearing pass.
type RunContext string

const (
	// ContextImmediate actions run as part of the main pass and may be
	// invoked individually.
	ContextImmediate RunContext = "immediate"

	// ContextDeferred actions act on the response of the triggering request
	// and run after the immediate batch.
	ContextDeferred RunContext = "deferred"
)

// Valid reports whether c is a known run context.
func (c RunContext) Valid() bool {
	return c == ContextImmediate || c == ContextDeferred
}

// Section groups actions for presentation in settings.
type Section string

const (
	SectionDefaults     Section = "defaults"
	SectionHosting      Section = "hosting"
	SectionIntegrations Section = "integrations"
	SectionCustom       Section = "custom"
)

// Handler performs one cache-clearing operation.
//
// Implementations report failure through the returned Outcome. A panic is
// treated as a failure by the runner.
type Handler interface {
	Clear(ctx context.Context) Outcome
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context) Outcome

// Clear calls f(ctx).
func (f HandlerFunc) Clear(ctx context.Context) Outcome { return f(ctx) }

// Action is one entry in the clearing registry. Actions are rebuilt on every
// listing and never persisted.
type Action struct {
	Key            string     `json:"key"`
	Title          string     `json:"title"`
	Context        RunContext `json:"run_context"`
	DefaultEnabled bool       `json:"default_enabled"`
	Enabled        bool       `json:"enabled"`
	Section        Section    `json:"section"`
	Comments       string     `json:"comments,omitempty"`

	// Callback overrides the built-in handler registered for Key.
	Callback Handler `json:"-"`

	// CallbackErr is set when a callback was supplied but could not be
	// turned into something invocable. Such actions are skipped.
	CallbackErr error `json:"-"`
}

// HasCallback reports whether a developer-supplied callback was provided,
// whether or not it is usable.
func (a Action) HasCallback() bool {
	return a.Callback != nil || a.CallbackErr != nil
}
