package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
	"github.com/unicoop/convenios-backend/internal/platform/textnorm"
)

// CreateInput starts a draft, optionally with the first step's fields.
type CreateInput struct {
	Title    string            `json:"title"`
	TypeID   string            `json:"convenio_type_id"`
	Step     string            `json:"step"`
	Fields   map[string]string `json:"fields"`
	Complete bool              `json:"complete"`
}

// UpdateInput merges one wizard step into the stored form data.
type UpdateInput struct {
	Title    *string           `json:"title"`
	Step     string            `json:"step"`
	Fields   map[string]string `json:"fields"`
	Complete bool              `json:"complete"`
}

// ConvenioService collects form data and serves reads of agreements and their history.
type ConvenioService struct {
	store        Store
	types        TypeStore
	cache        TypeCache
	observations ObservationStore
	activity     ActivityRecorder
}

func NewConvenioService(store Store, types TypeStore, cache TypeCache, observations ObservationStore, activity ActivityRecorder) *ConvenioService {
	return &ConvenioService{
		store:        store,
		types:        types,
		cache:        cache,
		observations: observations,
		activity:     activity,
	}
}

// Create stores a new draft owned by the caller
func (s *ConvenioService) Create(ctx context.Context, caller domain.Caller, in CreateInput) (*domain.Convenio, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.TypeID) == "" {
		return nil, fmt.Errorf("%w: convenio_type_id is required", domain.ErrInvalidInput)
	}
	if _, err := s.types.GetByID(ctx, in.TypeID); err != nil {
		if errors.Is(err, domain.ErrTypeNotFound) {
			return nil, fmt.Errorf("%w: unknown convenio_type_id", domain.ErrInvalidInput)
		}
		return nil, err
	}

	c := &domain.Convenio{
		Title:   title,
		TypeID:  in.TypeID,
		Status:  domain.StatusDraft,
		OwnerID: caller.ID,
	}
	if in.Step != "" {
		c.Content = c.Content.WithStep(in.Step, in.Fields, in.Complete)
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	status := c.Status
	s.activity.Record(ctx, activitydomain.Entry{
		ConvenioID: c.ID,
		ActorID:    caller.ID,
		Action:     activitydomain.ActionCreated,
		NewStatus:  &status,
		IPAddress:  caller.IP,
	})
	return c, nil
}

// UpdateForm merges one step into the form data. Only the owner may edit,
// and only while the agreement is a draft or back in correction.
func (s *ConvenioService) UpdateForm(ctx context.Context, caller domain.Caller, id string, in UpdateInput) (*domain.Convenio, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != caller.ID {
		return nil, domain.ErrUnauthorized
	}
	if !domain.Editable(c.Status) {
		return nil, domain.ErrNotEditable
	}

	title := c.Title
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
	}
	content := c.Content
	if in.Step != "" {
		content = content.WithStep(in.Step, in.Fields, in.Complete)
	}

	updated, err := s.store.UpdateContent(ctx, id, title, content)
	if err != nil {
		return nil, err
	}

	meta := map[string]interface{}{"fields": len(in.Fields)}
	if in.Step != "" {
		meta["step"] = in.Step
	}
	s.activity.Record(ctx, activitydomain.Entry{
		ConvenioID: id,
		ActorID:    caller.ID,
		Action:     activitydomain.ActionContentUpdate,
		Metadata:   meta,
		IPAddress:  caller.IP,
	})
	return updated, nil
}

// Get returns an agreement the caller may read
func (s *ConvenioService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Convenio, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != caller.ID && !caller.CanReview() {
		return nil, domain.ErrUnauthorized
	}
	return c, nil
}

// ListOwn lists the caller's agreements
func (s *ConvenioService) ListOwn(ctx context.Context, caller domain.Caller, statuses []string) ([]domain.Convenio, error) {
	if err := validateStatuses(statuses); err != nil {
		return nil, err
	}
	return s.store.List(ctx, domain.ListFilter{Statuses: statuses, OwnerID: caller.ID})
}

// ListAll lists every agreement for administrators and reviewers
func (s *ConvenioService) ListAll(ctx context.Context, caller domain.Caller, f domain.ListFilter) ([]domain.Convenio, error) {
	if !caller.CanReview() {
		return nil, domain.ErrUnauthorized
	}
	if err := validateStatuses(f.Statuses); err != nil {
		return nil, err
	}
	return s.store.List(ctx, f)
}

// Observations lists the review observations of an agreement the caller may read
func (s *ConvenioService) Observations(ctx context.Context, caller domain.Caller, id string) ([]domain.Observation, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.observations.ListByConvenio(ctx, id)
}

// Activity lists the history of an agreement the caller may read
func (s *ConvenioService) Activity(ctx context.Context, caller domain.Caller, id string) ([]activitydomain.Entry, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.activity.History(ctx, id)
}

// AddObservation attaches a free text observation without changing status. Admin only.
func (s *ConvenioService) AddObservation(ctx context.Context, caller domain.Caller, id, content string) (*domain.Observation, error) {
	if caller.Role != adminRole {
		return nil, domain.ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrObservationsRequired
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}

	o := &domain.Observation{ConvenioID: id, AuthorID: caller.ID, Content: content}
	if err := s.observations.Create(ctx, o); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activitydomain.Entry{
		ConvenioID: id,
		ActorID:    caller.ID,
		Action:     activitydomain.ActionObservationAdded,
		Metadata:   map[string]interface{}{"observation_id": o.ID},
		IPAddress:  caller.IP,
	})
	return o, nil
}

// ResolveObservation flips an observation's resolved flag. Admin only.
func (s *ConvenioService) ResolveObservation(ctx context.Context, caller domain.Caller, observationID string) (*domain.Observation, error) {
	if caller.Role != adminRole {
		return nil, domain.ErrUnauthorized
	}
	return s.observations.Resolve(ctx, observationID)
}

// ListTypes returns every agreement type
func (s *ConvenioService) ListTypes(ctx context.Context) ([]domain.AgreementType, error) {
	return s.types.List(ctx)
}

// LookupType resolves a display name or slug to its type reference.
// The input is slugified first, so "Convenio Marco" and "convenio-marco" agree.
func (s *ConvenioService) LookupType(ctx context.Context, nameOrSlug string) (domain.TypeRef, error) {
	slug := textnorm.Slugify(nameOrSlug)
	if slug == "" {
		return domain.TypeRef{}, domain.ErrTypeNotFound
	}

	if s.cache != nil {
		ref, ok, err := s.cache.Get(ctx, slug)
		if err != nil {
			logger.New(ctx).Warnf("convenios.lookup_type", "cache get slug=%s error=%v", slug, err)
		} else if ok {
			return ref, nil
		}
	}

	t, err := s.types.GetBySlug(ctx, slug)
	if err != nil {
		return domain.TypeRef{}, err
	}
	ref := domain.TypeRef{ID: t.ID, Name: t.Name}

	if s.cache != nil {
		if err := s.cache.Set(ctx, slug, ref); err != nil {
			logger.New(ctx).Warnf("convenios.lookup_type", "cache set slug=%s error=%v", slug, err)
		}
	}
	return ref, nil
}

func validateStatuses(statuses []string) error {
	for _, st := range statuses {
		if !domain.IsValidStatus(st) {
			return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, st)
		}
	}
	return nil
}
