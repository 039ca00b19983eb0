package history

import "context"

// Trigger identifies what started a pass.
type Trigger struct {
	Source  string
	Subject string
}

type triggerKey struct{}

// WithTrigger attaches trigger details to a context. Empty fields keep the
// values already present.
func WithTrigger(ctx context.Context, t Trigger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(triggerKey{}).(Trigger)
	merged := Trigger{
		Source:  pick(t.Source, existing.Source),
		Subject: pick(t.Subject, existing.Subject),
	}
	return context.WithValue(ctx, triggerKey{}, merged)
}

// TriggerFromContext returns the trigger stored in ctx, defaulting the
// source to the CLI.
func TriggerFromContext(ctx context.Context) Trigger {
	if ctx == nil {
		return Trigger{Source: SourceCLI}
	}
	t, _ := ctx.Value(triggerKey{}).(Trigger)
	if t.Source == "" {
		t.Source = SourceCLI
	}
	return t
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}
