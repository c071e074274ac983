package service

import (
	"context"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// Migration names accepted by Run.
const (
	MigrationDraftToSubmitted = "draft-to-submitted"
	MigrationLegacyFields     = "legacy-fields"
)

// MigrationReport lists the agreements a migration touched.
type MigrationReport struct {
	Migration string   `json:"migration"`
	Updated   int      `json:"updated"`
	IDs       []string `json:"ids"`
}

// MigrationService runs the one-time data fixes. Both are idempotent.
type MigrationService struct {
	store    MigrationStore
	activity ActivityRecorder
}

func NewMigrationService(store MigrationStore, activity ActivityRecorder) *MigrationService {
	return &MigrationService{store: store, activity: activity}
}

// DraftsToSubmitted moves drafts that were already sent to enviado
func (s *MigrationService) DraftsToSubmitted(ctx context.Context, caller domain.Caller) (*MigrationReport, error) {
	if caller.Role != adminRole {
		return nil, domain.ErrUnauthorized
	}
	ids, err := s.store.MigrateDraftsToSubmitted(ctx)
	if err != nil {
		return nil, err
	}

	from, to := domain.StatusDraft, domain.StatusSubmitted
	for _, id := range ids {
		s.activity.Record(ctx, activitydomain.Entry{
			ConvenioID: id,
			ActorID:    caller.ID,
			Action:     activitydomain.ActionMigration,
			PrevStatus: &from,
			NewStatus:  &to,
			Metadata:   map[string]interface{}{"migration": MigrationDraftToSubmitted},
			IPAddress:  caller.IP,
		})
	}
	return s.report(ctx, MigrationDraftToSubmitted, ids), nil
}

// LegacyFields copies pre-wizard form data into the step layout
func (s *MigrationService) LegacyFields(ctx context.Context, caller domain.Caller) (*MigrationReport, error) {
	if caller.Role != adminRole {
		return nil, domain.ErrUnauthorized
	}
	ids, err := s.store.CopyLegacyFields(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		s.activity.Record(ctx, activitydomain.Entry{
			ConvenioID: id,
			ActorID:    caller.ID,
			Action:     activitydomain.ActionMigration,
			Metadata:   map[string]interface{}{"migration": MigrationLegacyFields},
			IPAddress:  caller.IP,
		})
	}
	return s.report(ctx, MigrationLegacyFields, ids), nil
}

func (s *MigrationService) report(ctx context.Context, name string, ids []string) *MigrationReport {
	if ids == nil {
		ids = []string{}
	}
	logger.New(ctx).Infof("convenios.migration", "migration=%s updated=%d", name, len(ids))
	return &MigrationReport{Migration: name, Updated: len(ids), IDs: ids}
}
