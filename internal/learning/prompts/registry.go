package prompts

import (
	"fmt"
	"strings"
)

type Template struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func(Input) map[string]any
	System     func(Input, string) string
	User       func(Input, string) string
	Validate   Validator
}

var registry = map[PromptName]Template{}

// Register registers a compiled Template.
func Register(t Template) {
	registry[t.Name] = t
}

// Build renders the named prompt. It is pure: the same name and input always
// produce the same Prompt. An unknown name or invalid input is a caller bug.
func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := registry[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.Schema == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing schema", string(name))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	if strings.TrimSpace(in.ContentLocale) == "" {
		in.ContentLocale = DefaultContentLocale
	}

	schema := t.Schema(in)
	contract, err := RenderContract(schema)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s contract: %w", string(name), err)
	}
	return Prompt{
		Name:       string(t.Name),
		Version:    t.Version,
		SchemaName: strings.TrimSpace(t.SchemaName),
		Schema:     schema,
		System:     strings.TrimSpace(t.System(in, contract)),
		User:       strings.TrimSpace(t.User(in, contract)),
	}, nil
}

func Names() []PromptName {
	out := make([]PromptName, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
