package index

import (
	"fmt"
	"strings"
)

const DefaultNamespace = "codemaster"

// Gameplay question buckets, one per (kind, language).
func QuestionBucketKey(ns, kind, lang string) string {
	return fmt.Sprintf("%s:bucket:%s:%s", orDefault(ns), kind, lang)
}

// Fingerprints already served from a bucket.
func QuestionUsedKey(ns, kind, lang string) string {
	return fmt.Sprintf("%s:used:%s:%s", orDefault(ns), kind, lang)
}

func QuestionBucketPattern(ns string) string {
	return orDefault(ns) + ":bucket:*"
}

func QuestionUsedPattern(ns string) string {
	return orDefault(ns) + ":used:*"
}

// ParseQuestionBucketKey is the inverse of QuestionBucketKey.
func ParseQuestionBucketKey(ns, key string) (kind, lang string, ok bool) {
	rest, found := strings.CutPrefix(key, orDefault(ns)+":bucket:")
	if !found {
		return "", "", false
	}
	kind, lang, ok = strings.Cut(rest, ":")
	if !ok || kind == "" || lang == "" {
		return "", "", false
	}
	return kind, lang, true
}

func orDefault(ns string) string {
	if ns = strings.TrimSpace(ns); ns == "" {
		return DefaultNamespace
	}
	return ns
}
