package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 32

var symbolWords = strings.NewReplacer("+", "p", "#", "sharp")

// Slugify derives the storage id for a language display name: lowercase ASCII
// alphanumerics separated by single hyphens, never leading or trailing.
// "+" and "#" are spelled out so that C, C++ and C# stay distinct.
func Slugify(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}
	folded = symbolWords.Replace(strings.ToLower(folded))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	out := b.String()
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	return out
}

// LanguageID is Slugify with the empty result turned into an error.
func LanguageID(name string) (string, error) {
	id := Slugify(name)
	if id == "" {
		return "", &InvalidLanguageNameError{Name: name}
	}
	return id, nil
}
