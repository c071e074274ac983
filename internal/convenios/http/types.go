package http

import (
	"context"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/service"
)

// Convenios is satisfied by *service.ConvenioService.
type Convenios interface {
	Create(ctx context.Context, caller domain.Caller, in service.CreateInput) (*domain.Convenio, error)
	UpdateForm(ctx context.Context, caller domain.Caller, id string, in service.UpdateInput) (*domain.Convenio, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.Convenio, error)
	ListOwn(ctx context.Context, caller domain.Caller, statuses []string) ([]domain.Convenio, error)
	ListAll(ctx context.Context, caller domain.Caller, f domain.ListFilter) ([]domain.Convenio, error)
	Observations(ctx context.Context, caller domain.Caller, id string) ([]domain.Observation, error)
	Activity(ctx context.Context, caller domain.Caller, id string) ([]activitydomain.Entry, error)
	AddObservation(ctx context.Context, caller domain.Caller, id, content string) (*domain.Observation, error)
	ResolveObservation(ctx context.Context, caller domain.Caller, observationID string) (*domain.Observation, error)
	ListTypes(ctx context.Context) ([]domain.AgreementType, error)
	LookupType(ctx context.Context, nameOrSlug string) (domain.TypeRef, error)
}

// Workflow is satisfied by *service.WorkflowService.
type Workflow interface {
	Apply(ctx context.Context, in service.ApplyInput) (*service.Result, error)
	ResendCorrection(ctx context.Context, caller domain.Caller, id, comment string) error
}

// Migrations is satisfied by *service.MigrationService.
type Migrations interface {
	DraftsToSubmitted(ctx context.Context, caller domain.Caller) (*service.MigrationReport, error)
	LegacyFields(ctx context.Context, caller domain.Caller) (*service.MigrationReport, error)
}

type Handler struct {
	convenios  Convenios
	workflow   Workflow
	migrations Migrations
}

func New(convenios Convenios, workflow Workflow, migrations Migrations) *Handler {
	return &Handler{convenios: convenios, workflow: workflow, migrations: migrations}
}

// actionRequest is the optional body of every status action.
type actionRequest struct {
	Comment       string `json:"comment"`
	Observaciones string `json:"observaciones"`
}

func (r actionRequest) text() string {
	if r.Observaciones != "" {
		return r.Observaciones
	}
	return r.Comment
}
