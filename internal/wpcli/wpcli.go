package wpcli

import (
	"context"
	"fmt"
	"strings"
)

// Runner invokes WP-CLI subcommands against one site.
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// CLI is a Runner that shells out to the wp binary.
type CLI struct {
	Binary string
	Path   string
	URL    string
}

// Run executes "wp <args> --path=... --url=..." and returns its output.
func (c CLI) Run(ctx context.Context, args ...string) (Result, error) {
	bin := c.Binary
	if bin == "" {
		bin = "wp"
	}
	full := append([]string{}, args...)
	if c.Path != "" {
		full = append(full, "--path="+c.Path)
	}
	if c.URL != "" {
		full = append(full, "--url="+c.URL)
	}
	full = append(full, "--skip-themes")
	return NewCommand(bin, full...).Run(ctx)
}

// Markers echoed by Eval snippets.
const (
	markerOK      = "CCEV_OK"
	markerMissing = "CCEV_MISSING"
)

// ErrMissing is returned by Eval when the required symbol does not exist on
// the site.
type ErrMissing struct {
	Symbol string
}

func (e *ErrMissing) Error() string {
	if strings.Contains(e.Symbol, "::") || strings.HasPrefix(e.Symbol, `\`) {
		return fmt.Sprintf("Class or method %s not available.", e.Symbol)
	}
	return fmt.Sprintf("Function %s not available.", e.Symbol)
}

// Eval runs a PHP statement through "wp eval" after checking that the
// symbol it needs exists. Symbols are a function name, a class name, or
// Class::method.
func Eval(ctx context.Context, r Runner, requires, call string) error {
	res, err := r.Run(ctx, "eval", Snippet(requires, call))
	if err != nil {
		return err
	}
	out := res.Stdout
	switch {
	case strings.Contains(out, markerMissing):
		return &ErrMissing{Symbol: requires}
	case strings.Contains(out, markerOK):
		return nil
	}
	return fmt.Errorf("wp eval: unexpected output %q", strings.TrimSpace(out))
}

// Snippet builds the guarded PHP for Eval.
func Snippet(requires, call string) string {
	return fmt.Sprintf("if (!(%s)) { echo '%s'; return; } %s echo '%s';",
		existsCheck(requires), markerMissing, call, markerOK)
}

func existsCheck(symbol string) string {
	if class, method, ok := strings.Cut(symbol, "::"); ok {
		return fmt.Sprintf("method_exists('%s', '%s')", phpQuote(class), phpQuote(method))
	}
	if strings.HasPrefix(symbol, `\`) {
		return fmt.Sprintf("class_exists('%s')", phpQuote(symbol))
	}
	return fmt.Sprintf("function_exists('%s')", phpQuote(symbol))
}

func phpQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
