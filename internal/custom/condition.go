package custom

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Condition is a compiled when expression. It sees two variables:
// plugins, the list of active plugin files, and config, the site settings
// as a map.
type Condition struct {
	expr    string
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("plugins", cel.ListType(cel.StringType)),
		cel.Variable("config", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}
	return env, nil
}

// CompileCondition parses and type-checks expr.
func CompileCondition(expr string) (*Condition, error) {
	env, err := newEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error parsing when %q: %w", expr, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error type-checking when %q: %w", expr, issues.Err())
	}
	if out := checked.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("when %q must evaluate to a boolean, not %s", expr, out)
	}

	program, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("error compiling when %q: %w", expr, err)
	}
	return &Condition{expr: expr, program: program}, nil
}

// Eval reports whether the condition holds.
func (c *Condition) Eval(plugins []string, config map[string]any) (bool, error) {
	if plugins == nil {
		plugins = []string{}
	}
	if config == nil {
		config = map[string]any{}
	}
	result, _, err := c.program.Eval(map[string]any{
		"plugins": plugins,
		"config":  config,
	})
	if err != nil {
		return false, fmt.Errorf("error evaluating when %q: %w", c.expr, err)
	}
	if result.Type() != types.BoolType {
		return false, fmt.Errorf("when %q did not evaluate to a boolean", c.expr)
	}
	return result.Value().(bool), nil
}

func (c *Condition) String() string { return c.expr }
