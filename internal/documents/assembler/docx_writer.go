package assembler

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Style is the visual role of a paragraph.
type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleSubtitle
	StyleHeading
	StyleClosing
)

// Paragraph is one block of rendered text.
type Paragraph struct {
	Text  string
	Style Style
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentTail = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1417" w:right="1701" w:bottom="1417" w:left="1701" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body></w:document>`

// WriteDocx serialises paragraphs as a minimal WordprocessingML package.
func WriteDocx(w io.Writer, paragraphs []Paragraph) error {
	doc, err := documentXML(paragraphs)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/document.xml", doc},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := f.Write(p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

// Docx is WriteDocx into a byte slice.
func Docx(paragraphs []Paragraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocx(&buf, paragraphs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentXML(paragraphs []Paragraph) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(documentHead)
	for _, p := range paragraphs {
		pPr, rPr := styleProps(p.Style)
		buf.WriteString("<w:p>")
		buf.WriteString(pPr)
		buf.WriteString("<w:r>")
		buf.WriteString(rPr)
		buf.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(&buf, []byte(p.Text)); err != nil {
			return nil, fmt.Errorf("escape paragraph: %w", err)
		}
		buf.WriteString("</w:t></w:r></w:p>")
	}
	buf.WriteString(documentTail)
	return buf.Bytes(), nil
}

func styleProps(s Style) (pPr, rPr string) {
	const spacing = `<w:spacing w:after="160"/>`
	switch s {
	case StyleTitle:
		return `<w:pPr><w:jc w:val="center"/>` + spacing + `</w:pPr>`, `<w:rPr><w:b/><w:sz w:val="28"/></w:rPr>`
	case StyleSubtitle:
		return `<w:pPr><w:jc w:val="center"/>` + spacing + `</w:pPr>`, `<w:rPr><w:i/><w:sz w:val="24"/></w:rPr>`
	case StyleHeading:
		return `<w:pPr>` + spacing + `</w:pPr>`, `<w:rPr><w:b/><w:sz w:val="22"/></w:rPr>`
	case StyleClosing:
		return `<w:pPr><w:jc w:val="both"/><w:spacing w:before="240" w:after="160"/></w:pPr>`, `<w:rPr><w:sz w:val="22"/></w:rPr>`
	default:
		return `<w:pPr><w:jc w:val="both"/>` + spacing + `</w:pPr>`, `<w:rPr><w:sz w:val="22"/></w:rPr>`
	}
}
