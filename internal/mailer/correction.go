package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// CorrectionEmail is the data for the "corrections requested" message.
type CorrectionEmail struct {
	To            string
	OwnerName     string
	ConvenioTitle string
	Observations  string
	Link          string
}

var correctionTmpl = template.Must(template.New("correction").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Correcciones solicitadas</h2>
  <p>Hola {{if .OwnerName}}{{.OwnerName}}{{else}}usuario{{end}},</p>
  <p>Su convenio <strong>{{.ConvenioTitle}}</strong> fue revisado y requiere correcciones.</p>
  <div style="border-left: 4px solid #f59e0b; padding: 8px 12px; background: #fffbeb;">
    {{range .Lines}}<p>{{.}}</p>{{end}}
  </div>
  {{if .Link}}<p><a href="{{.Link}}">Revisar convenio</a></p>{{end}}
</body>
</html>`))

// Build renders the correction message.
func (c CorrectionEmail) Build() (Email, error) {
	var buf bytes.Buffer
	data := struct {
		CorrectionEmail
		Lines []string
	}{c, splitLines(c.Observations)}

	if err := correctionTmpl.Execute(&buf, data); err != nil {
		return Email{}, fmt.Errorf("render correction email: %w", err)
	}

	text := fmt.Sprintf("Su convenio \"%s\" requiere correcciones:\n\n%s\n", c.ConvenioTitle, c.Observations)
	if c.Link != "" {
		text += "\n" + c.Link + "\n"
	}

	return Email{
		To:      c.To,
		Subject: fmt.Sprintf("Correcciones requeridas: %s", c.ConvenioTitle),
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
