package service

import (
	"context"
	"errors"
	"sync"
	"time"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
	"github.com/unicoop/convenios-backend/internal/storage/drive"
)

type memStore struct {
	mu       sync.Mutex
	rows     map[string]*domain.Convenio
	updates  int
	nextID   int
	migrated []string
}

func newMemStore(rows ...domain.Convenio) *memStore {
	s := &memStore{rows: map[string]*domain.Convenio{}}
	for i := range rows {
		c := rows[i]
		s.rows[c.ID] = &c
	}
	return s
}

func (m *memStore) Create(ctx context.Context, c *domain.Convenio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = "new-" + string(rune('0'+m.nextID))
	c.SerialNumber = int64(m.nextID)
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
	var out []domain.Convenio
	for _, c := range m.rows {
		if f.OwnerID != "" && c.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *memStore) UpdateContent(ctx context.Context, id, title string, content domain.FormData) (*domain.Convenio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrConvenioNotFound
	}
	c.Title = title
	c.Content = content
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return domain.ErrConvenioNotFound
	}
	if c.Status != u.From {
		return domain.ErrInvalidPrecondition
	}
	m.updates++
	u.Apply(c)
	return nil
}

func (m *memStore) UpdateFileURL(ctx context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return domain.ErrConvenioNotFound
	}
	c.FileURL = &url
	return nil
}

func (m *memStore) MigrateDraftsToSubmitted(ctx context.Context) ([]string, error) {
	return m.migrated, nil
}

func (m *memStore) CopyLegacyFields(ctx context.Context) ([]string, error) {
	return nil, nil
}

type memTypes struct {
	bySlug map[string]domain.AgreementType
	calls  int
}

func newMemTypes(types ...domain.AgreementType) *memTypes {
	m := &memTypes{bySlug: map[string]domain.AgreementType{}}
	for _, t := range types {
		m.bySlug[t.Slug] = t
	}
	return m
}

func (m *memTypes) List(ctx context.Context) ([]domain.AgreementType, error) {
	var out []domain.AgreementType
	for _, t := range m.bySlug {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTypes) GetByID(ctx context.Context, id string) (*domain.AgreementType, error) {
	for _, t := range m.bySlug {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, domain.ErrTypeNotFound
}

func (m *memTypes) GetBySlug(ctx context.Context, slug string) (*domain.AgreementType, error) {
	m.calls++
	t, ok := m.bySlug[slug]
	if !ok {
		return nil, domain.ErrTypeNotFound
	}
	return &t, nil
}

type memCache map[string]domain.TypeRef

func (m memCache) Get(ctx context.Context, slug string) (domain.TypeRef, bool, error) {
	ref, ok := m[slug]
	return ref, ok, nil
}

func (m memCache) Set(ctx context.Context, slug string, ref domain.TypeRef) error {
	m[slug] = ref
	return nil
}

type memObservations struct {
	created      []domain.Observation
	resolvedOpen []string
	err          error
}

func (m *memObservations) Create(ctx context.Context, o *domain.Observation) error {
	if m.err != nil {
		return m.err
	}
	o.ID = "obs-1"
	m.created = append(m.created, *o)
	return nil
}

func (m *memObservations) ListByConvenio(ctx context.Context, convenioID string) ([]domain.Observation, error) {
	return m.created, nil
}

func (m *memObservations) Resolve(ctx context.Context, id string) (*domain.Observation, error) {
	for i := range m.created {
		if m.created[i].ID == id {
			m.created[i].Resolved = true
			return &m.created[i], nil
		}
	}
	return nil, domain.ErrObservationNotFound
}

func (m *memObservations) ResolveOpen(ctx context.Context, convenioID string) (int64, error) {
	m.resolvedOpen = append(m.resolvedOpen, convenioID)
	return 1, nil
}

type memActivity struct {
	entries []activitydomain.Entry
}

func (m *memActivity) Record(ctx context.Context, e activitydomain.Entry) {
	m.entries = append(m.entries, e)
}

func (m *memActivity) History(ctx context.Context, convenioID string) ([]activitydomain.Entry, error) {
	return m.entries, nil
}

func (m *memActivity) actions() []string {
	var out []string
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakePlacer struct {
	placed []drive.Placement
	err    error
}

func (f *fakePlacer) Place(ctx context.Context, p drive.Placement) error {
	f.placed = append(f.placed, p)
	return f.err
}

type fakeNotifier struct {
	sent   []notifsvc.Request
	emails []notifsvc.Request
	err    error
}

func (f *fakeNotifier) Notify(ctx context.Context, req notifsvc.Request) error {
	f.sent = append(f.sent, req)
	return f.err
}

func (f *fakeNotifier) SendCorrectionEmail(ctx context.Context, req notifsvc.Request) error {
	f.emails = append(f.emails, req)
	return f.err
}

type fakeProfiles struct {
	admins []authdomain.Profile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id string) (*authdomain.Profile, error) {
	if id == "owner-1" {
		name := "Ana Pérez"
		return &authdomain.Profile{ID: id, FullName: &name, Role: authdomain.RoleUser}, nil
	}
	return nil, authdomain.ErrProfileNotFound
}

func (f *fakeProfiles) ListAdmins(ctx context.Context) ([]authdomain.Profile, error) {
	if f.admins == nil {
		return nil, errors.New("directory unavailable")
	}
	return f.admins, nil
}
