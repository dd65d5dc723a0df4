package content

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Rust":             "rust",
		"C++":              "cpp",
		"C#":               "csharp",
		"  Objective-C  ":  "objective-c",
		"Français Ünïcode": "francais-unicode",
		".NET / F#":        "net-fsharp",
		"Go!!!":            "go",
		"Visual  Basic":    "visual-basic",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugifyIdempotentAndWellFormed(t *testing.T) {
	inputs := []string{
		"Rust", "C++", "TypeScript 5", "--weird--", "Émile's Lang", "a b c",
		strings.Repeat("long name ", 10), "SQL (PostgreSQL)", "x86 asm",
	}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Fatalf("not idempotent for %q: %q -> %q", in, once, twice)
		}
		if once == "" {
			continue
		}
		if !slugShape.MatchString(once) {
			t.Fatalf("bad slug shape for %q: %q", in, once)
		}
		if len(once) > maxSlugLen {
			t.Fatalf("slug too long for %q: %q", in, once)
		}
	}
}

func TestLanguageIDRejectsSymbolOnlyNames(t *testing.T) {
	for _, in := range []string{"", "   ", "!!!", "日本語", "🦀"} {
		_, err := LanguageID(in)
		var invalid *InvalidLanguageNameError
		if !errors.As(err, &invalid) {
			t.Fatalf("LanguageID(%q): expected InvalidLanguageNameError, got %v", in, err)
		}
	}
}
