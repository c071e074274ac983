package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	activitysvc "github.com/unicoop/convenios-backend/internal/activity/service"
	"github.com/unicoop/convenios-backend/internal/auth"
	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/service"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Convenio
	seq  int
}

func (m *memStore) Create(ctx context.Context, c *domain.Convenio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ID = "c" + string(rune('0'+m.seq))
	c.CreatedAt = time.Now()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Convenio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrConvenioNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) List(ctx context.Context, f domain.ListFilter) ([]domain.Convenio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Convenio{}
	for _, c := range m.rows {
		if f.OwnerID == "" || c.OwnerID == f.OwnerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) UpdateContent(ctx context.Context, id, title string, content domain.FormData) (*domain.Convenio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.rows[id]
	c.Title, c.Content = title, content
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.rows[id]
	if c.Status != u.From {
		return domain.ErrInvalidPrecondition
	}
	u.Apply(c)
	return nil
}

func (m *memStore) UpdateFileURL(ctx context.Context, id, url string) error { return nil }

func (m *memStore) MigrateDraftsToSubmitted(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func (m *memStore) CopyLegacyFields(ctx context.Context) ([]string, error) { return []string{}, nil }

type memTypes struct{}

var marco = domain.AgreementType{ID: "type-1", Name: "Convenio Marco", Slug: "convenio-marco"}

func (memTypes) List(ctx context.Context) ([]domain.AgreementType, error) {
	return []domain.AgreementType{marco}, nil
}

func (memTypes) GetByID(ctx context.Context, id string) (*domain.AgreementType, error) {
	if id != marco.ID {
		return nil, domain.ErrTypeNotFound
	}
	t := marco
	return &t, nil
}

func (memTypes) GetBySlug(ctx context.Context, slug string) (*domain.AgreementType, error) {
	if slug != marco.Slug {
		return nil, domain.ErrTypeNotFound
	}
	t := marco
	return &t, nil
}

type memObservations struct {
	rows []domain.Observation
}

func (m *memObservations) Create(ctx context.Context, o *domain.Observation) error {
	o.ID = "o1"
	m.rows = append(m.rows, *o)
	return nil
}

func (m *memObservations) ListByConvenio(ctx context.Context, id string) ([]domain.Observation, error) {
	return m.rows, nil
}

func (m *memObservations) Resolve(ctx context.Context, id string) (*domain.Observation, error) {
	return nil, domain.ErrObservationNotFound
}

func (m *memObservations) ResolveOpen(ctx context.Context, id string) (int64, error) {
	for i := range m.rows {
		m.rows[i].Resolved = true
	}
	return int64(len(m.rows)), nil
}

type memActivityStore struct {
	entries []activitydomain.Entry
}

func (m *memActivityStore) Append(ctx context.Context, e *activitydomain.Entry) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memActivityStore) ListByConvenio(ctx context.Context, id string) ([]activitydomain.Entry, error) {
	return m.entries, nil
}

type failingActivityStore struct{}

func (failingActivityStore) Append(ctx context.Context, e *activitydomain.Entry) error {
	return errors.New("activity insert failed")
}

func (failingActivityStore) ListByConvenio(ctx context.Context, id string) ([]activitydomain.Entry, error) {
	return nil, errors.New("activity read failed")
}

type nopNotifier struct{ events []string }

func (n *nopNotifier) Notify(ctx context.Context, req notifsvc.Request) error {
	n.events = append(n.events, string(req.Event))
	return nil
}

func (n *nopNotifier) SendCorrectionEmail(ctx context.Context, req notifsvc.Request) error {
	return nil
}

var profiles = map[string]*authdomain.Profile{
	"owner":    {ID: "owner-1", Role: authdomain.RoleUser},
	"stranger": {ID: "user-2", Role: authdomain.RoleUser},
	"admin":    {ID: "admin-1", Role: authdomain.RoleAdmin},
}

type testEnv struct {
	router   *gin.Engine
	activity *memActivityStore
	notifier *nopNotifier
}

func newTestEnv() *testEnv {
	act := &memActivityStore{}
	env := newTestEnvWithActivity(act)
	env.activity = act
	return env
}

func newTestEnvWithActivity(act activitysvc.Store) *testEnv {
	gin.SetMode(gin.TestMode)
	store := &memStore{rows: map[string]*domain.Convenio{}}
	obs := &memObservations{}
	recorder := activitysvc.NewRecorder(act)
	notifier := &nopNotifier{}

	convenios := service.NewConvenioService(store, memTypes{}, nil, obs, recorder)
	workflow := service.NewWorkflowService(store, memTypes{}, obs, recorder, nil, notifier, nil)
	migrations := service.NewMigrationService(store, recorder)
	h := New(convenios, workflow, migrations)

	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		if p, ok := profiles[c.GetHeader("X-Test-User")]; ok {
			auth.SetProfile(c, p)
		}
		c.Next()
	})
	h.RegisterUser(api)
	h.RegisterAdmin(api.Group("/admin"))
	return &testEnv{router: r, notifier: notifier}
}

func (e *testEnv) do(t *testing.T, user, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func statusOf(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	conv, ok := body["convenio"].(map[string]interface{})
	require.True(t, ok, "response has a convenio: %v", body)
	return conv["status"].(string)
}

func TestLifecycle_SubmitCorrectResubmitApprove(t *testing.T) {
	env := newTestEnv()

	w, body := env.do(t, "owner", http.MethodPost, "/api/v1/convenios", map[string]interface{}{
		"title":            "Marco ACME",
		"convenio_type_id": "type-1",
		"step":             "entidad",
		"fields":           map[string]string{"razon_social": "ACME"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := body["convenio"].(map[string]interface{})["id"].(string)
	base := "/api/v1/convenios/" + id

	w, body = env.do(t, "owner", http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusSubmitted, statusOf(t, body))

	w, _ = env.do(t, "owner", http.MethodPatch, base, map[string]interface{}{"step": "vigencia", "fields": map[string]string{"anios": "2"}})
	assert.Equal(t, http.StatusConflict, w.Code, "submitted agreements are not editable")

	w, _ = env.do(t, "admin", http.MethodPost, "/api/v1/admin/convenios/"+id+"/actions/correct", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "correct needs observations")

	w, body = env.do(t, "admin", http.MethodPost, "/api/v1/admin/convenios/"+id+"/actions/correct", map[string]string{"observaciones": "Falta anexo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusInReview, statusOf(t, body))

	w, _ = env.do(t, "owner", http.MethodPatch, base, map[string]interface{}{"step": "vigencia", "fields": map[string]string{"anios": "2"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = env.do(t, "owner", http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusSubmitted, statusOf(t, body))

	w, body = env.do(t, "admin", http.MethodPost, "/api/v1/admin/convenios/"+id+"/actions/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusApproved, statusOf(t, body))

	w, body = env.do(t, "owner", http.MethodPost, base+"/modification-request", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusModificationReview, statusOf(t, body))

	assert.Equal(t, []string{"convenioCreated", "convenioCorrected", "convenioResubmitted", "convenioApproved", "custom"}, env.notifier.events)

	w, body = env.do(t, "owner", http.MethodGet, base+"/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	// created, submit, correct, content update, resubmit, approve, modification request
	assert.Len(t, body["activity"], 7)
}

func TestTransitions_ActivityFailureKeepsResponse(t *testing.T) {
	env := newTestEnvWithActivity(failingActivityStore{})

	w, body := env.do(t, "owner", http.MethodPost, "/api/v1/convenios", map[string]string{"title": "Marco ACME", "convenio_type_id": "type-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := body["convenio"].(map[string]interface{})["id"].(string)

	w, body = env.do(t, "owner", http.MethodPost, "/api/v1/convenios/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusSubmitted, statusOf(t, body))

	w, body = env.do(t, "admin", http.MethodPost, "/api/v1/admin/convenios/"+id+"/actions/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusApproved, statusOf(t, body))

	w, body = env.do(t, "owner", http.MethodGet, "/api/v1/convenios/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusApproved, statusOf(t, body))
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv()
	_, body := env.do(t, "owner", http.MethodPost, "/api/v1/convenios", map[string]string{"title": "t", "convenio_type_id": "type-1"})
	id := body["convenio"].(map[string]interface{})["id"].(string)

	tests := []struct {
		name   string
		user   string
		method string
		path   string
		want   int
	}{
		{"anonymous", "", http.MethodGet, "/api/v1/convenios", http.StatusUnauthorized},
		{"stranger reads", "stranger", http.MethodGet, "/api/v1/convenios/" + id, http.StatusForbidden},
		{"missing", "owner", http.MethodGet, "/api/v1/convenios/nope", http.StatusNotFound},
		{"unknown action", "admin", http.MethodPost, "/api/v1/admin/convenios/" + id + "/actions/publish", http.StatusBadRequest},
		{"owner approves", "owner", http.MethodPost, "/api/v1/admin/convenios/" + id + "/actions/approve", http.StatusForbidden},
		{"approve draft", "admin", http.MethodPost, "/api/v1/admin/convenios/" + id + "/actions/approve", http.StatusConflict},
		{"modification of draft", "owner", http.MethodPost, "/api/v1/convenios/" + id + "/modification-request", http.StatusConflict},
		{"unknown type", "owner", http.MethodGet, "/api/v1/agreement-types/lookup/no-existe", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := env.do(t, tt.user, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestLookupType(t *testing.T) {
	env := newTestEnv()

	w, body := env.do(t, "owner", http.MethodGet, "/api/v1/agreement-types/lookup/Convenio%20Marco", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "type-1", body["id"])
	assert.Equal(t, "Convenio Marco", body["name"])
}

func TestMigrationsRoute(t *testing.T) {
	env := newTestEnv()

	w, body := env.do(t, "admin", http.MethodPost, "/api/v1/admin/migrations/draft-to-submitted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "draft-to-submitted", body["migration"])

	w, _ = env.do(t, "owner", http.MethodPost, "/api/v1/admin/migrations/legacy-fields", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
