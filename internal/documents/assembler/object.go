package assembler

import (
	"fmt"
	"strings"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
)

// Paragraphs walks a structured template in reading order, filling every
// placeholder. Missing fields never fail; they render as visible markers.
func Paragraphs(t domain.Template, fields map[string]string) []Paragraph {
	var out []Paragraph
	add := func(text string, style Style) {
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, Paragraph{Text: Fill(text, fields), Style: style})
		}
	}

	add(t.Title, StyleTitle)
	add(t.Subtitle, StyleSubtitle)
	for _, p := range t.Parties {
		add(p, StyleBody)
	}
	if len(t.Recitals) > 0 {
		add("ANTECEDENTES", StyleHeading)
		for i, r := range t.Recitals {
			add(fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(r)), StyleBody)
		}
	}
	for _, c := range t.Clauses {
		add(c.Title, StyleHeading)
		add(c.Body, StyleBody)
	}
	add(t.Closing, StyleClosing)
	return out
}

// IsEmpty reports whether a template has nothing to render.
func IsEmpty(t domain.Template) bool {
	return strings.TrimSpace(t.Title) == "" && len(t.Parties) == 0 && len(t.Recitals) == 0 &&
		len(t.Clauses) == 0 && strings.TrimSpace(t.Closing) == ""
}

// RenderObject produces a .docx from a structured template.
func RenderObject(t domain.Template, fields map[string]string) ([]byte, error) {
	return Docx(Paragraphs(t, fields))
}
