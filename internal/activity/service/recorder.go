package service

import (
	"context"

	"github.com/unicoop/convenios-backend/internal/activity/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

type Store interface {
	Append(ctx context.Context, e *domain.Entry) error
	ListByConvenio(ctx context.Context, convenioID string) ([]domain.Entry, error)
}

// Recorder appends activity entries on behalf of other services.
// Record never fails its caller; a failed insert is only logged.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends e, logging instead of returning any failure.
func (r *Recorder) Record(ctx context.Context, e domain.Entry) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Append(ctx, &e); err != nil {
		logger.New(ctx).Errorf("activity.record", "convenio_id=%s action=%s error=%v", e.ConvenioID, e.Action, err)
	}
}

// History lists the entries for a convenio
func (r *Recorder) History(ctx context.Context, convenioID string) ([]domain.Entry, error) {
	return r.store.ListByConvenio(ctx, convenioID)
}
