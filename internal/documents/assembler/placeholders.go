package assembler

import (
	"regexp"
	"sort"
	"strings"

	"github.com/unicoop/convenios-backend/internal/platform/textnorm"
)

var placeholderRe = regexp.MustCompile(`\{([^{}\s]+)\}`)

// MissingMarker is what an unresolved placeholder renders as in a draft.
func MissingMarker(key string) string {
	return "[campo faltante: " + key + "]"
}

// Fill substitutes {key} placeholders in text. Keys are matched exactly first,
// then accent and case insensitively. Unresolved ones become MissingMarker.
// The output never contains a placeholder, even when a value does.
func Fill(text string, fields map[string]string) string {
	folded := foldKeys(fields)
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := lookup(fields, folded, key); ok {
			return inert(v)
		}
		return MissingMarker(key)
	})
}

// inert marks placeholder-shaped text inside a field value as missing, so a
// value can never introduce a tag of its own.
func inert(v string) string {
	return placeholderRe.ReplaceAllStringFunc(v, func(m string) string {
		return MissingMarker(placeholderRe.FindStringSubmatch(m)[1])
	})
}

// Placeholders lists the distinct keys referenced in text, sorted.
func Placeholders(text string) []string {
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func foldKeys(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[textnorm.Fold(strings.TrimSpace(k))] = v
	}
	return out
}

func lookup(fields, folded map[string]string, key string) (string, bool) {
	if v, ok := fields[key]; ok && v != "" {
		return v, true
	}
	if v, ok := folded[textnorm.Fold(key)]; ok && v != "" {
		return v, true
	}
	return "", false
}
