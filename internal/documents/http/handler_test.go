package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicoop/convenios-backend/internal/auth"
	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/documents/assembler"
	"github.com/unicoop/convenios-backend/internal/documents/service"
)

type stubGenerator struct {
	res *service.Result
	err error
	got service.Request
}

func (s *stubGenerator) Generate(ctx context.Context, caller domain.Caller, req service.Request) (*service.Result, error) {
	s.got = req
	return s.res, s.err
}

func artifact() *assembler.Artifact {
	return &assembler.Artifact{
		FileName:    "convenio-marco.docx",
		ContentType: assembler.DocxContentType,
		Strategy:    assembler.StrategyBinary,
		Content:     []byte("PK-doc"),
	}
}

func newRouter(gen Generator, signedIn bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if signedIn {
		r.Use(func(c *gin.Context) {
			auth.SetProfile(c, &authdomain.Profile{ID: "u1", Role: authdomain.RoleUser})
			c.Next()
		})
	}
	New(gen).Register(r.Group("/api/v1"))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate_Download(t *testing.T) {
	gen := &stubGenerator{res: &service.Result{Artifact: artifact()}}
	r := newRouter(gen, true)

	w := post(r, "/api/v1/documents/generate", `{"templateId":"convenio-marco","fields":[{"key":"entidad","value":"ACME"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, assembler.DocxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="convenio-marco.docx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-doc", w.Body.String())
	assert.Equal(t, "convenio-marco", gen.got.TemplateID)
	assert.Equal(t, []service.Field{{Key: "entidad", Value: "ACME"}}, gen.got.Fields)
}

func TestGenerate_StoredReturnsPointer(t *testing.T) {
	gen := &stubGenerator{res: &service.Result{Artifact: artifact(), FileURL: "https://drive.google.com/file/d/abc/view"}}
	r := newRouter(gen, true)

	w := post(r, "/api/v1/documents/generate", `{"convenioId":"c1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", body.File)
	assert.Equal(t, "convenio-marco.docx", body.FileName)

	w = post(r, "/api/v1/documents/generate?download=true", `{"convenioId":"c1"}`)
	assert.Equal(t, "PK-doc", w.Body.String())
}

func TestGenerate_UploadWarningHeader(t *testing.T) {
	gen := &stubGenerator{res: &service.Result{Artifact: artifact(), Warnings: []string{service.WarnUploadFailed}}}
	w := post(newRouter(gen, true), "/api/v1/documents/generate", `{"convenioId":"c1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.WarnUploadFailed, w.Header().Get("X-Warnings"))
}

func TestGenerate_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrConvenioNotFound, http.StatusNotFound},
		{"no template", assembler.ErrNoTemplate, http.StatusNotFound},
		{"forbidden", domain.ErrUnauthorized, http.StatusForbidden},
		{"invalid", domain.ErrInvalidInput, http.StatusBadRequest},
		{"tags", &assembler.MissingTagsError{Tags: []string{"x"}}, http.StatusUnprocessableEntity},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(newRouter(&stubGenerator{err: tc.err}, true), "/api/v1/documents/generate", `{}`)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestGenerate_RequiresProfileAndBody(t *testing.T) {
	w := post(newRouter(&stubGenerator{}, false), "/api/v1/documents/generate", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(newRouter(&stubGenerator{}, true), "/api/v1/documents/generate", `{"fields":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
