package assembler

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/unicoop/convenios-backend/internal/platform/textnorm"
)

// Words dropped before comparing names. "convenio" is on the list because
// nearly every template file carries it.
var stopWords = map[string]bool{
	"a": true, "al": true, "con": true, "convenio": true, "de": true, "del": true,
	"el": true, "en": true, "la": true, "las": true, "los": true, "para": true,
	"por": true, "plantilla": true, "template": true, "un": true, "una": true, "y": true,
}

func keyTokens(s string) []string {
	var out []string
	for _, w := range textnorm.Words(s) {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// score rates how well a template file name matches an agreement type name.
// Zero means no match.
func score(typeName, fileName string) int {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	want := keyTokens(typeName)
	have := keyTokens(base)
	if len(want) == 0 || len(have) == 0 {
		return 0
	}

	w, h := strings.Join(want, " "), strings.Join(have, " ")
	switch {
	case w == h:
		return 1000
	case strings.Contains(h, w) || strings.Contains(w, h):
		return 500 + 100*min(len(w), len(h))/max(len(w), len(h))
	}

	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	shared := 0
	for _, t := range want {
		if set[t] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	return 100 * shared / max(len(want), len(have))
}

// Match picks the best template file for typeName. Ties go to the shorter
// file name, then the lexically smaller one.
func Match(typeName string, files []string) (string, bool) {
	type candidate struct {
		name  string
		score int
	}
	var cands []candidate
	for _, f := range files {
		if s := score(typeName, f); s > 0 {
			cands = append(cands, candidate{f, s})
		}
	}
	if len(cands) == 0 {
		return "", false
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if len(a.name) != len(b.name) {
			return len(a.name) < len(b.name)
		}
		return a.name < b.name
	})
	return cands[0].name, true
}
