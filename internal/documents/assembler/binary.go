package assembler

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/lukasjarosch/go-docx"
)

// MissingTagsError reports placeholders still present after rendering.
type MissingTagsError struct {
	Tags []string
}

func (e *MissingTagsError) Error() string {
	return "unresolved template tags: " + strings.Join(e.Tags, ", ")
}

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// RenderBinary fills a .docx template's {tag} placeholders. When tags are left
// unresolved it retries once with exactly those tags blanked; a second failure
// is returned as is.
func RenderBinary(template []byte, fields map[string]string) ([]byte, error) {
	out, err := renderBinary(template, fields)
	if err == nil {
		return out, nil
	}

	var missing *MissingTagsError
	if !errors.As(err, &missing) {
		return nil, err
	}

	retry := make(map[string]string, len(fields)+len(missing.Tags))
	for k, v := range fields {
		retry[k] = v
	}
	for _, tag := range missing.Tags {
		retry[tag] = ""
	}
	return renderBinary(template, retry)
}

func renderBinary(template []byte, fields map[string]string) ([]byte, error) {
	text, err := documentText(template)
	if err != nil {
		return nil, err
	}

	// only replace tags the template actually uses
	folded := foldKeys(fields)
	values := docx.PlaceholderMap{}
	for _, tag := range Placeholders(text) {
		if v, ok := fields[tag]; ok {
			values[tag] = inert(v)
		} else if v, ok := lookup(fields, folded, tag); ok {
			values[tag] = inert(v)
		}
	}

	doc, err := docx.OpenBytes(template)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer doc.Close()

	if len(values) > 0 {
		if err := doc.ReplaceAll(values); err != nil {
			return nil, fmt.Errorf("replace placeholders: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	rendered, err := documentText(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if left := Placeholders(rendered); len(left) > 0 {
		return nil, &MissingTagsError{Tags: left}
	}
	return buf.Bytes(), nil
}

// documentText returns the visible text of the body, headers and footers,
// with run boundaries removed so split placeholders read whole.
func documentText(docxBytes []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	var sb strings.Builder
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		// paragraph ends separate words; run ends do not
		s := strings.ReplaceAll(string(raw), "</w:p>", "\n")
		sb.WriteString(html.UnescapeString(xmlTagRe.ReplaceAllString(s, "")))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	return strings.HasPrefix(name, "word/") && strings.HasSuffix(name, ".xml") &&
		(strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer"))
}

// TextOf exposes the visible text of a generated document, for previews and tests.
func TextOf(docxBytes []byte) (string, error) {
	return documentText(docxBytes)
}
