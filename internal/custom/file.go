// Package custom loads developer-defined actions from a YAML file: new
// actions backed by a command or an HTTP request, overrides for built-in
// actions, and removals.
package custom

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// File is a parsed actions file.
type File struct {
	Actions   []ActionSpec            `yaml:"actions"`
	Overrides map[string]OverrideSpec `yaml:"overrides"`
	Remove    []string                `yaml:"remove"`

	conditions map[string]*Condition
}

// ActionSpec defines one custom action.
type ActionSpec struct {
	Key      string       `yaml:"key"`
	Title    string       `yaml:"title"`
	Context  string       `yaml:"context"`
	Default  *bool        `yaml:"default"`
	Comments string       `yaml:"comments"`
	When     string       `yaml:"when"`
	Command  *CommandSpec `yaml:"command"`
	HTTP     *HTTPSpec    `yaml:"http"`
}

// CommandSpec runs a local program.
type CommandSpec struct {
	Argv    []string `yaml:"argv"`
	Dir     string   `yaml:"dir"`
	Env     []string `yaml:"env"`
	Timeout string   `yaml:"timeout"`
}

// HTTPSpec sends one request. Expect lists the accepted status codes;
// empty means any 2xx.
type HTTPSpec struct {
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
	Expect  []int             `yaml:"expect"`
}

// OverrideSpec changes fields of an existing action. Unset fields are kept.
type OverrideSpec struct {
	Title    string `yaml:"title"`
	Context  string `yaml:"context"`
	Default  *bool  `yaml:"default"`
	Comments string `yaml:"comments"`
}

// Load reads and validates the actions file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("custom: failed to read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("custom: %s: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the actions schema, decodes it and compiles
// every when condition.
func Parse(data []byte) (*File, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}

	seen := make(map[string]bool, len(f.Actions))
	f.conditions = make(map[string]*Condition)
	for _, a := range f.Actions {
		if seen[a.Key] {
			return nil, fmt.Errorf("duplicate action key %q", a.Key)
		}
		seen[a.Key] = true

		if strings.TrimSpace(a.When) == "" {
			continue
		}
		cond, err := CompileCondition(a.When)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", a.Key, err)
		}
		f.conditions[a.Key] = cond
	}
	return &f, nil
}

// validate checks the YAML document against the embedded JSON schema.
func validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("actions file is not representable as JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(docJSON),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, "- "+e.String())
		}
		return fmt.Errorf("actions file failed validation:\n%s", strings.Join(msgs, "\n"))
	}
	return nil
}
