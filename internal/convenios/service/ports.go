package service

import (
	"context"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
	"github.com/unicoop/convenios-backend/internal/storage/drive"
)

// Store is satisfied by *repository.ConvenioRepository.
type Store interface {
	Create(ctx context.Context, c *domain.Convenio) error
	GetByID(ctx context.Context, id string) (*domain.Convenio, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.Convenio, error)
	UpdateContent(ctx context.Context, id, title string, content domain.FormData) (*domain.Convenio, error)
	UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) error
	UpdateFileURL(ctx context.Context, id, url string) error
}

// MigrationStore is satisfied by *repository.ConvenioRepository.
type MigrationStore interface {
	MigrateDraftsToSubmitted(ctx context.Context) ([]string, error)
	CopyLegacyFields(ctx context.Context) ([]string, error)
}

type TypeStore interface {
	List(ctx context.Context) ([]domain.AgreementType, error)
	GetByID(ctx context.Context, id string) (*domain.AgreementType, error)
	GetBySlug(ctx context.Context, slug string) (*domain.AgreementType, error)
}

// TypeCache is satisfied by *repository.TypeCache.
type TypeCache interface {
	Get(ctx context.Context, slug string) (domain.TypeRef, bool, error)
	Set(ctx context.Context, slug string, ref domain.TypeRef) error
}

type ObservationStore interface {
	Create(ctx context.Context, o *domain.Observation) error
	ListByConvenio(ctx context.Context, convenioID string) ([]domain.Observation, error)
	Resolve(ctx context.Context, id string) (*domain.Observation, error)
	ResolveOpen(ctx context.Context, convenioID string) (int64, error)
}

// ActivityRecorder is satisfied by *activity/service.Recorder.
type ActivityRecorder interface {
	Record(ctx context.Context, e activitydomain.Entry)
	History(ctx context.Context, convenioID string) ([]activitydomain.Entry, error)
}

// Placer is satisfied by *drive.Placer.
type Placer interface {
	Place(ctx context.Context, p drive.Placement) error
}

// Notifier is satisfied by *notifications/service.Notifier.
type Notifier interface {
	Notify(ctx context.Context, req notifsvc.Request) error
	SendCorrectionEmail(ctx context.Context, req notifsvc.Request) error
}

// Profiles is satisfied by *auth/service.AuthService.
type Profiles interface {
	GetProfile(ctx context.Context, id string) (*authdomain.Profile, error)
	ListAdmins(ctx context.Context) ([]authdomain.Profile, error)
}
