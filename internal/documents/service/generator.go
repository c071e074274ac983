// Package service generates agreement documents and files them with the agreement.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	activitydomain "github.com/unicoop/convenios-backend/internal/activity/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/documents/assembler"
	notifdomain "github.com/unicoop/convenios-backend/internal/notifications/domain"
	notifsvc "github.com/unicoop/convenios-backend/internal/notifications/service"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
	"github.com/unicoop/convenios-backend/internal/platform/textnorm"
	"github.com/unicoop/convenios-backend/internal/storage/drive"
)

type Convenios interface {
	GetByID(ctx context.Context, id string) (*domain.Convenio, error)
	UpdateFileURL(ctx context.Context, id, url string) error
}

type Types interface {
	GetByID(ctx context.Context, id string) (*domain.AgreementType, error)
	GetBySlug(ctx context.Context, slug string) (*domain.AgreementType, error)
}

// Assembler is satisfied by *assembler.Assembler.
type Assembler interface {
	Assemble(ctx context.Context, t *domain.AgreementType, fields map[string]string) (*assembler.Artifact, error)
}

// Uploader is satisfied by *drive.Placer.
type Uploader interface {
	StoreGenerated(ctx context.Context, g drive.Generated) (*drive.StoredDocument, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, e activitydomain.Entry)
}

type Notifier interface {
	Notify(ctx context.Context, req notifsvc.Request) error
}

// Field is one key/value pair sent by the form.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Request asks for a document. TemplateID is an agreement type id or slug;
// when empty the agreement's own type is used.
type Request struct {
	TemplateID string  `json:"templateId"`
	Fields     []Field `json:"fields"`
	ConvenioID string  `json:"convenioId"`
}

// Result is the generated artifact. FileURL is set once the document is stored.
type Result struct {
	Artifact *assembler.Artifact
	FileURL  string
	Warnings []string
}

const WarnUploadFailed = "upload_failed"

type Generator struct {
	convenios Convenios
	types     Types
	assembler Assembler
	uploader  Uploader
	activity  ActivityRecorder
	notifier  Notifier
}

func NewGenerator(convenios Convenios, types Types, asm Assembler, uploader Uploader, activity ActivityRecorder, notifier Notifier) *Generator {
	return &Generator{
		convenios: convenios,
		types:     types,
		assembler: asm,
		uploader:  uploader,
		activity:  activity,
		notifier:  notifier,
	}
}

// Generate renders a document. Request fields win over the agreement's stored form data.
func (g *Generator) Generate(ctx context.Context, caller domain.Caller, req Request) (*Result, error) {
	log := logger.New(ctx)

	var c *domain.Convenio
	if id := strings.TrimSpace(req.ConvenioID); id != "" {
		var err error
		c, err = g.convenios.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.OwnerID != caller.ID && !caller.CanReview() {
			return nil, domain.ErrUnauthorized
		}
	}

	templateID := strings.TrimSpace(req.TemplateID)
	if templateID == "" && c != nil {
		templateID = c.TypeID
	}
	if templateID == "" {
		return nil, fmt.Errorf("%w: templateId is required", domain.ErrInvalidInput)
	}

	t, err := g.lookupType(ctx, templateID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if c != nil {
		fields = c.Content.Fields()
	}
	for _, f := range req.Fields {
		if k := strings.TrimSpace(f.Key); k != "" {
			fields[k] = f.Value
		}
	}

	art, err := g.assembler.Assemble(ctx, t, fields)
	if err != nil {
		return nil, err
	}
	log.Infof("documents.generate", "type=%s strategy=%s template=%s convenio_id=%s", t.Slug, art.Strategy, art.Template, req.ConvenioID)

	res := &Result{Artifact: art}
	if c == nil || g.uploader == nil {
		return res, nil
	}

	folder := string(domain.FolderForStatus(c.Status))
	current := ""
	if c.FileURL != nil {
		current = *c.FileURL
	}
	stored, err := g.uploader.StoreGenerated(ctx, drive.Generated{
		ActorID:    caller.ID,
		TypeSlug:   t.Slug,
		Folder:     folder,
		CurrentURL: current,
		Request: drive.UploadRequest{
			Name:     art.FileName,
			MimeType: art.ContentType,
			Content:  bytes.NewReader(art.Content),
		},
	})
	if err != nil {
		// the caller still gets the bytes
		log.Warnf("documents.generate", "convenio_id=%s upload error=%v", c.ID, err)
		res.Warnings = append(res.Warnings, WarnUploadFailed)
		return res, nil
	}

	up := stored.File
	res.FileURL = up.WebViewLink
	if res.FileURL == "" {
		res.FileURL = drive.FileURL(up.ID)
	}
	if stored.Pointer != "" && stored.Pointer != current {
		if err := g.convenios.UpdateFileURL(ctx, c.ID, stored.Pointer); err != nil {
			log.Errorf("documents.generate", "convenio_id=%s update file url error=%v", c.ID, err)
		}
	}

	if g.activity != nil {
		status := c.Status
		g.activity.Record(ctx, activitydomain.Entry{
			ConvenioID: c.ID,
			ActorID:    caller.ID,
			Action:     activitydomain.ActionDocumentGenerated,
			NewStatus:  &status,
			Metadata: map[string]interface{}{
				"file_id":  up.ID,
				"strategy": art.Strategy,
				"folder":   folder,
			},
			IPAddress: caller.IP,
		})
	}
	if g.notifier != nil {
		err := g.notifier.Notify(ctx, notifsvc.Request{
			Event:      notifdomain.EventDocumentGenerated,
			UserID:     c.OwnerID,
			ConvenioID: c.ID,
			Params:     notifdomain.Params{ConvenioTitle: c.Title},
		})
		if err != nil {
			log.Errorf("documents.generate", "convenio_id=%s notify error=%v", c.ID, err)
		}
	}
	return res, nil
}

// lookupType accepts either a type id or a slug.
func (g *Generator) lookupType(ctx context.Context, raw string) (*domain.AgreementType, error) {
	if _, err := uuid.Parse(raw); err == nil {
		t, err := g.types.GetByID(ctx, raw)
		if err == nil || !errors.Is(err, domain.ErrTypeNotFound) {
			return t, err
		}
	}
	return g.types.GetBySlug(ctx, textnorm.Slugify(raw))
}
