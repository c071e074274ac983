package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	notifdomain "github.com/unicoop/convenios-backend/internal/notifications/domain"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
	"github.com/unicoop/convenios-backend/internal/storage/drive"
)

const adminRole = authdomain.RoleAdmin

// Warnings surfaced to the caller when a best-effort step fails.
const (
	WarnObservationNotSaved = "observation_not_saved"
	WarnStoragePlacement    = "storage_placement_failed"
	WarnNotification        = "notification_failed"
)

// ApplyInput is one action request against an agreement.
type ApplyInput struct {
	ConvenioID string
	Action     domain.Action
	Caller     domain.Caller
	// Comment carries the observations for correct, and an optional note otherwise.
	Comment string
}

// Result is the agreement after the status change plus any best-effort warnings.
type Result struct {
	Convenio *domain.Convenio `json:"convenio"`
	Warnings []string         `json:"warnings,omitempty"`
}

// WorkflowService applies status transitions and fans out their side effects.
type WorkflowService struct {
	store        Store
	types        TypeStore
	observations ObservationStore
	activity     ActivityRecorder
	placer       Placer
	notifier     Notifier
	profiles     Profiles
	now          func() time.Time
}

func NewWorkflowService(
	store Store,
	types TypeStore,
	observations ObservationStore,
	activity ActivityRecorder,
	placer Placer,
	notifier Notifier,
	profiles Profiles,
) *WorkflowService {
	return &WorkflowService{
		store:        store,
		types:        types,
		observations: observations,
		activity:     activity,
		placer:       placer,
		notifier:     notifier,
		profiles:     profiles,
		now:          time.Now,
	}
}

// Apply plans and persists one transition. The status change is authoritative:
// once it is stored, activity, placement and notification failures are only
// logged and reported as warnings.
func (s *WorkflowService) Apply(ctx context.Context, in ApplyInput) (*Result, error) {
	log := logger.New(ctx)

	c, err := s.store.GetByID(ctx, in.ConvenioID)
	if err != nil {
		return nil, err
	}

	t, err := domain.Plan(in.Action, in.Caller, c)
	if err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(in.Comment)
	if in.Action == domain.ActionCorrect && comment == "" {
		return nil, domain.ErrObservationsRequired
	}

	from := c.Status
	update := t.Update(from, in.Caller, s.now())
	if err := s.store.UpdateStatus(ctx, c.ID, update); err != nil {
		return nil, err
	}
	update.Apply(c)
	log.Infof("convenios.apply", "convenio_id=%s action=%s from=%s to=%s actor=%s", c.ID, in.Action, from, c.Status, in.Caller.ID)

	res := &Result{Convenio: c}

	switch {
	case in.Action == domain.ActionCorrect:
		o := &domain.Observation{ConvenioID: c.ID, AuthorID: in.Caller.ID, Content: comment}
		if err := s.observations.Create(ctx, o); err != nil {
			log.Errorf("convenios.apply", "convenio_id=%s save observation error=%v", c.ID, err)
			res.Warnings = append(res.Warnings, WarnObservationNotSaved)
		}
	case in.Action == domain.ActionSubmit && from == domain.StatusInReview:
		if _, err := s.observations.ResolveOpen(ctx, c.ID); err != nil {
			log.Errorf("convenios.apply", "convenio_id=%s resolve observations error=%v", c.ID, err)
		}
	}

	meta := map[string]interface{}{"action": string(in.Action)}
	if comment != "" {
		meta["comment"] = comment
	}
	prev, next := from, c.Status
	s.activity.Record(ctx, activitydomain.Entry{
		ConvenioID: c.ID,
		ActorID:    in.Caller.ID,
		Action:     activitydomain.ActionStatusChange,
		PrevStatus: &prev,
		NewStatus:  &next,
		Metadata:   meta,
		IPAddress:  in.Caller.IP,
	})

	if w := s.place(ctx, c, t.Folder, in.Caller); w != "" {
		res.Warnings = append(res.Warnings, w)
	}
	if w := s.notify(ctx, c, t, from, in.Caller, comment); w != "" {
		res.Warnings = append(res.Warnings, w)
	}

	return res, nil
}

// place files the stored document into the transition's folder. Agreements
// without a stored document have nothing to move.
func (s *WorkflowService) place(ctx context.Context, c *domain.Convenio, folder domain.Folder, caller domain.Caller) string {
	if s.placer == nil || c.FileURL == nil || *c.FileURL == "" {
		return ""
	}

	typeSlug := ""
	if t, err := s.types.GetByID(ctx, c.TypeID); err == nil {
		typeSlug = t.Slug
	} else {
		logger.New(ctx).Warnf("convenios.place", "convenio_id=%s type lookup error=%v", c.ID, err)
	}

	err := s.placer.Place(ctx, drive.Placement{
		ActorID:    caller.ID,
		ConvenioID: c.ID,
		FileURL:    *c.FileURL,
		TypeSlug:   typeSlug,
		Folder:     string(folder),
	})
	if err == nil {
		return ""
	}

	logger.New(ctx).Errorf("convenios.place", "convenio_id=%s folder=%s error=%v", c.ID, folder, err)
	status := c.Status
	s.activity.Record(ctx, activitydomain.Entry{
		ConvenioID: c.ID,
		ActorID:    caller.ID,
		Action:     activitydomain.ActionStoragePlacementFailed,
		NewStatus:  &status,
		Metadata: map[string]interface{}{
			"folder": string(folder),
			"error":  err.Error(),
		},
		IPAddress: caller.IP,
	})
	return WarnStoragePlacement
}

// notify tells the owner about the change. Owner-initiated actions also reach every admin.
func (s *WorkflowService) notify(ctx context.Context, c *domain.Convenio, t domain.Transition, from string, caller domain.Caller, comment string) string {
	if s.notifier == nil {
		return ""
	}
	log := logger.New(ctx)

	event := t.EventFrom(from)
	req := notifsvc.Request{
		Event:      event,
		UserID:     c.OwnerID,
		ConvenioID: c.ID,
		Params:     paramsFor(t.Action, c, comment),
	}
	if event == notifdomain.EventCorrected {
		req.OwnerName = s.ownerName(ctx, c.OwnerID)
	}

	warning := ""
	if err := s.notifier.Notify(ctx, req); err != nil {
		log.Errorf("convenios.notify", "convenio_id=%s event=%s error=%v", c.ID, event, err)
		warning = WarnNotification
	}

	if t.Issuer == domain.IssuerOwner && s.profiles != nil {
		admins, err := s.profiles.ListAdmins(ctx)
		if err != nil {
			log.Errorf("convenios.notify", "list admins error=%v", err)
			return warning
		}
		for _, a := range admins {
			if a.ID == caller.ID {
				continue
			}
			err := s.notifier.Notify(ctx, notifsvc.Request{
				Event:      notifdomain.EventCustom,
				UserID:     a.ID,
				ConvenioID: c.ID,
				Params: notifdomain.Params{
					Title:    adminTitle(t.Action, from),
					Message:  fmt.Sprintf("El convenio \"%s\" espera revisión.", c.Title),
					Severity: notifdomain.SeverityInfo,
				},
			})
			if err != nil {
				log.Errorf("convenios.notify", "convenio_id=%s admin_id=%s error=%v", c.ID, a.ID, err)
			}
		}
	}
	return warning
}

// ResendCorrection emails the owner the open observations, or comment when given.
func (s *WorkflowService) ResendCorrection(ctx context.Context, caller domain.Caller, id, comment string) error {
	if caller.Role != adminRole {
		return domain.ErrUnauthorized
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	comment = strings.TrimSpace(comment)
	if comment == "" {
		obs, err := s.observations.ListByConvenio(ctx, id)
		if err != nil {
			return err
		}
		var open []string
		for _, o := range obs {
			if !o.Resolved {
				open = append(open, o.Content)
			}
		}
		comment = strings.Join(open, "\n")
	}
	if comment == "" {
		return domain.ErrObservationsRequired
	}

	return s.notifier.SendCorrectionEmail(ctx, notifsvc.Request{
		Event:      notifdomain.EventCorrected,
		UserID:     c.OwnerID,
		ConvenioID: c.ID,
		OwnerName:  s.ownerName(ctx, c.OwnerID),
		Params:     notifdomain.Params{ConvenioTitle: c.Title, Comment: comment},
	})
}

func (s *WorkflowService) ownerName(ctx context.Context, ownerID string) string {
	if s.profiles == nil {
		return ""
	}
	p, err := s.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, authdomain.ErrProfileNotFound) {
			logger.New(ctx).Warnf("convenios.owner_name", "owner_id=%s error=%v", ownerID, err)
		}
		return ""
	}
	if p.FullName != nil {
		return *p.FullName
	}
	return ""
}

func paramsFor(action domain.Action, c *domain.Convenio, comment string) notifdomain.Params {
	p := notifdomain.Params{ConvenioTitle: c.Title, Comment: comment}
	switch action {
	case domain.ActionArchive:
		p.Title = "Convenio archivado"
		p.Message = fmt.Sprintf("El convenio \"%s\" fue archivado.", c.Title)
		p.Severity = notifdomain.SeverityInfo
	case domain.ActionRequestModification:
		p.Title = "Modificación solicitada"
		p.Message = fmt.Sprintf("Se registró la solicitud de modificación del convenio \"%s\".", c.Title)
		p.Severity = notifdomain.SeverityInfo
	}
	return p
}

func adminTitle(action domain.Action, from string) string {
	switch {
	case action == domain.ActionRequestModification:
		return "Solicitud de modificación"
	case from == domain.StatusInReview:
		return "Convenio reenviado"
	default:
		return "Nuevo convenio enviado"
	}
}
