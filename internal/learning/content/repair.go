package content

import (
	"fmt"
	"strings"
)

// Repair applies best-effort fixes to model output before JSON decoding:
// code fences are stripped, the outermost object or array is sliced out of any
// surrounding prose, trailing commas are dropped and raw control characters
// inside string literals are escaped. Each step is a no-op on clean input.
// Repair never attempts to fix content that is structurally wrong.
func Repair(raw string) string {
	s := stripFences(raw)
	s = outermostContainer(s)
	s = dropTrailingCommas(s)
	s = escapeStringControls(s)
	return strings.TrimSpace(s)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimLeft(s[3:], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	return s
}

func outermostContainer(s string) string {
	obj := strings.IndexByte(s, '{')
	arr := strings.IndexByte(s, '[')
	start, closer := obj, byte('}')
	if obj < 0 || (arr >= 0 && arr < obj) {
		start, closer = arr, ']'
	}
	if start < 0 {
		return s
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// scanner tracks whether a byte offset sits inside a JSON string literal.
type scanner struct {
	inString bool
	escaped  bool
}

// step advances over c and reports whether c belongs to a string literal
// (delimiting quotes included).
func (sc *scanner) step(c byte) bool {
	if sc.inString {
		switch {
		case sc.escaped:
			sc.escaped = false
		case c == '\\':
			sc.escaped = true
		case c == '"':
			sc.inString = false
		}
		return true
	}
	if c == '"' {
		sc.inString = true
		return true
	}
	return false
}

func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var sc scanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) || c != ',' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && isJSONSpace(s[j]) {
			j++
		}
		if j < len(s) && (s[j] == '}' || s[j] == ']') {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func escapeStringControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var sc scanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		// A control byte right after a backslash completes that escape.
		afterBackslash := sc.inString && sc.escaped
		if !sc.step(c) || c >= 0x20 {
			b.WriteByte(c)
			continue
		}
		if !afterBackslash {
			b.WriteByte('\\')
		}
		switch c {
		case '\n':
			b.WriteByte('n')
		case '\r':
			b.WriteByte('r')
		case '\t':
			b.WriteByte('t')
		default:
			fmt.Fprintf(&b, `u%04x`, c)
		}
	}
	return b.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
