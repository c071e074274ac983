package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicoop/convenios-backend/config"
)

func TestCorrectionEmail_Build(t *testing.T) {
	e, err := CorrectionEmail{
		To:            "ana@uni.edu",
		OwnerName:     "Ana",
		ConvenioTitle: "Convenio <Marco>",
		Observations:  "Falta firma\n\n  Revisar cláusula 3 ",
		Link:          "https://app.uni.edu/app/convenios/c1",
	}.Build()
	require.NoError(t, err)

	assert.Equal(t, "ana@uni.edu", e.To)
	assert.Equal(t, "Correcciones requeridas: Convenio <Marco>", e.Subject)
	assert.Contains(t, e.HTML, "Hola Ana")
	assert.Contains(t, e.HTML, "Convenio &lt;Marco&gt;")
	assert.Contains(t, e.HTML, "<p>Falta firma</p>")
	assert.Contains(t, e.HTML, "<p>Revisar cláusula 3</p>")
	assert.Contains(t, e.HTML, `href="https://app.uni.edu/app/convenios/c1"`)
	assert.Contains(t, e.Text, "Falta firma")
}

func TestNewSMTPSender_RequiresHost(t *testing.T) {
	_, err := NewSMTPSender(config.MailConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNoopSender(t *testing.T) {
	assert.ErrorIs(t, NoopSender{}.Send(context.Background(), Email{}), ErrNotConfigured)
}
