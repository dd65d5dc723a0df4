package prompts

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultContentLocale is the language learner-facing text is written in.
const DefaultContentLocale = "French"

func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// ArraySchema bounds the item count; a negative bound is left open.
func ArraySchema(items map[string]any, minItems, maxItems int) map[string]any {
	s := map[string]any{"type": "array", "items": items}
	if minItems >= 0 {
		s["minItems"] = minItems
	}
	if maxItems >= 0 {
		s["maxItems"] = maxItems
	}
	return s
}

func ExactArraySchema(items map[string]any, n int) map[string]any {
	return ArraySchema(items, n, n)
}

func StringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func StringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func ConstStringSchema(v string) map[string]any {
	return map[string]any{"type": "string", "const": v}
}

func IntSchema() map[string]any {
	return map[string]any{"type": "integer"}
}

func IntRangeSchema(min, max int) map[string]any {
	return map[string]any{"type": "integer", "minimum": min, "maximum": max}
}

func EnumSchema(values ...string) map[string]any {
	arr := make([]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return map[string]any{"type": "string", "enum": arr}
}

// RenderContract is the verbatim text of a schema as embedded in a prompt.
// encoding/json sorts map keys, so the text is stable for a given schema.
func RenderContract(schema map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schema); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
