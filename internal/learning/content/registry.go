package content

import (
	"encoding/json"
	"strings"
)

var builtinLanguages = []LanguageEntry{
	{ID: "js", Name: "JavaScript", Icon: "⚡"},
	{ID: "python", Name: "Python", Icon: "🐍"},
}

// BuiltinLanguages ship with the app; they are always listed and never deleted.
func BuiltinLanguages() []LanguageEntry {
	return append([]LanguageEntry(nil), builtinLanguages...)
}

func IsBuiltinLanguage(id string) bool {
	id = strings.TrimSpace(id)
	for _, l := range builtinLanguages {
		if l.ID == id {
			return true
		}
	}
	return false
}

// DecodeRegistry reads a stored registry payload. Anything unreadable counts as empty.
func DecodeRegistry(raw []byte) []LanguageEntry {
	var entries []LanguageEntry
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return []LanguageEntry{}
	}
	return entries
}

// NormalizeRegistry drops entries without an id, keeps the first entry per id and
// puts any missing built-in first.
func NormalizeRegistry(entries []LanguageEntry) []LanguageEntry {
	seen := map[string]bool{}
	out := make([]LanguageEntry, 0, len(entries)+len(builtinLanguages))
	for _, b := range builtinLanguages {
		if !containsLanguage(entries, b.ID) {
			out = append(out, b)
			seen[b.ID] = true
		}
	}
	for _, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// MergeRegistry adds entry when its id is absent. With replace set, an existing
// entry is updated in place instead of being left alone.
func MergeRegistry(existing []LanguageEntry, entry LanguageEntry, replace bool) []LanguageEntry {
	out := NormalizeRegistry(existing)
	for i := range out {
		if out[i].ID == entry.ID {
			if replace {
				out[i] = entry
			}
			return out
		}
	}
	return append(out, entry)
}

// RemoveFromRegistry reports whether id was listed. Built-ins are never removed.
func RemoveFromRegistry(existing []LanguageEntry, id string) ([]LanguageEntry, bool) {
	out := NormalizeRegistry(existing)
	if IsBuiltinLanguage(id) {
		return out, false
	}
	for i := range out {
		if out[i].ID == id {
			return append(out[:i:i], out[i+1:]...), true
		}
	}
	return out, false
}

func FindLanguage(entries []LanguageEntry, id string) (LanguageEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return LanguageEntry{}, false
}

func containsLanguage(entries []LanguageEntry, id string) bool {
	_, ok := FindLanguage(entries, id)
	return ok
}
