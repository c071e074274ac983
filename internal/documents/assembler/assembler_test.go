package assembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
)

func TestAssembler_PrefersMatchingDocx(t *testing.T) {
	dir := t.TempDir()
	tmpl := templateDocx(t, "PLANTILLA OFICIAL {entidad}")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Convenio Marco.docx"), tmpl, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$Convenio Marco.docx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("x"), 0o644))

	a := New(DirSource{Dir: dir})
	art, err := a.Assemble(context.Background(), &domain.AgreementType{Name: "Convenio Marco", Template: marcoTemplate}, map[string]string{"entidad": "ACME"})
	require.NoError(t, err)
	assert.Equal(t, StrategyBinary, art.Strategy)
	assert.Equal(t, "Convenio Marco.docx", art.Template)
	assert.Equal(t, "convenio-marco.docx", art.FileName)

	text, err := TextOf(art.Content)
	require.NoError(t, err)
	assert.Contains(t, text, "PLANTILLA OFICIAL ACME")
}

func TestAssembler_FallsBackToObject(t *testing.T) {
	a := New(DirSource{Dir: filepath.Join(t.TempDir(), "missing")})

	art, err := a.Assemble(context.Background(), &domain.AgreementType{Name: "Convenio Marco", Template: marcoTemplate}, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyObject, art.Strategy)
	assert.Equal(t, DocxContentType, art.ContentType)
}

func TestAssembler_NoTemplate(t *testing.T) {
	a := New(nil)
	_, err := a.Assemble(context.Background(), &domain.AgreementType{Name: "Convenio de Donación"}, nil)
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestDirSource_RejectsTraversal(t *testing.T) {
	_, err := DirSource{Dir: t.TempDir()}.Read(context.Background(), "../secret.docx")
	assert.Error(t, err)
}
