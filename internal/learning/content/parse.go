package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
)

// RepairAndParse repairs raw model output and unmarshals it into T.
func RepairAndParse[T any](kind, raw string) (T, error) {
	var out T
	repaired := Repair(raw)
	if repaired == "" {
		return out, malformed(kind, StageSyntax, errors.New("empty response"), raw)
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return out, malformed(kind, StageSyntax, err, raw)
	}
	return out, nil
}

// ParseItems accepts either a bare JSON array or an object wrapping exactly one
// array-valued field (models often answer {"questions": [...]} when asked for a list).
func ParseItems(kind, raw string) ([]json.RawMessage, error) {
	repaired := Repair(raw)
	if repaired == "" {
		return nil, malformed(kind, StageSyntax, errors.New("empty response"), raw)
	}
	if strings.HasPrefix(repaired, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(repaired), &items); err != nil {
			return nil, malformed(kind, StageSyntax, err, raw)
		}
		return items, nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &wrapper); err != nil {
		return nil, malformed(kind, StageSyntax, err, raw)
	}
	keys := make([]string, 0, len(wrapper))
	for k := range wrapper {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := bytes.TrimSpace(wrapper[k])
		if len(v) == 0 || v[0] != '[' {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return nil, malformed(kind, StageSyntax, err, raw)
		}
		return items, nil
	}
	return nil, malformed(kind, StageSyntax, errors.New("no array found in response"), raw)
}

// ParseList decodes ParseItems output into typed items, skipping elements that do not fit T.
func ParseList[T any](kind, raw string) ([]T, []string, error) {
	items, err := ParseItems(kind, raw)
	if err != nil {
		return nil, nil, err
	}
	out := make([]T, 0, len(items))
	var warnings []string
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			warnings = append(warnings, "item "+strconv.Itoa(i)+": "+err.Error())
			continue
		}
		out = append(out, v)
	}
	return out, warnings, nil
}
