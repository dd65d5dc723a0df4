package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yungbote/codemaster-backend/internal/learning/content"
)

type Validator func(Input) error

// Spec is the declaration format for a prompt. System and User are Go templates
// over Input; {{.Contract}} expands to the rendered JSON contract.
type Spec struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func(Input) map[string]any
	System     string
	User       string
	Validators []Validator
}

type renderData struct {
	Input
	Contract string
}

var templateFuncs = template.FuncMap{
	"lessonID": content.LessonID,
	"blank":    func() string { return content.BlankMarker },
}

// MakeTemplate compiles a Spec into a Template (runtime type)
func MakeTemplate(s Spec) (Template, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return Template{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	if strings.TrimSpace(s.SchemaName) == "" {
		return Template{}, fmt.Errorf("missing schema name for %s", s.Name)
	}
	if s.Schema == nil {
		return Template{}, fmt.Errorf("missing schema func for %s", s.Name)
	}
	sysT, err := template.New("system").Funcs(templateFuncs).Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Funcs(templateFuncs).Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	render := func(t *template.Template, in Input, contract string) string {
		var b bytes.Buffer
		_ = t.Execute(&b, renderData{Input: in, Contract: contract})
		return strings.TrimSpace(b.String())
	}
	tt := Template{
		Name:       s.Name,
		Version:    s.Version,
		SchemaName: s.SchemaName,
		Schema:     s.Schema,
		System:     func(in Input, contract string) string { return render(sysT, in, contract) },
		User:       func(in Input, contract string) string { return render(userT, in, contract) },
	}
	if len(s.Validators) > 0 {
		tt.Validate = func(in Input) error {
			for _, v := range s.Validators {
				if v == nil {
					continue
				}
				if err := v(in); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return tt, nil
}

// RegisterSpec compiles and registers s, panicking on a malformed declaration.
func RegisterSpec(s Spec) {
	t, err := MakeTemplate(s)
	if err != nil {
		panic(err)
	}
	Register(t)
}

func requireLanguage(in Input) error {
	if strings.TrimSpace(in.Language) == "" || strings.TrimSpace(in.LanguageID) == "" {
		return fmt.Errorf("language and language id required")
	}
	return nil
}

func requireLevel(in Input) error {
	if in.LevelID <= 0 || in.LessonCount <= 0 {
		return fmt.Errorf("level id and lesson count must be positive")
	}
	return nil
}

func requireCount(in Input) error {
	if in.Count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	return nil
}
