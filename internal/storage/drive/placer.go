package drive

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/unicoop/convenios-backend/config"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

var (
	ErrFolderNotConfigured = errors.New("target folder is not configured")
	ErrNoStoredItem        = errors.New("agreement has no stored document")
)

// Mover is the subset of *Client the placer drives.
type Mover interface {
	MoveFile(ctx context.Context, id, folderID string) error
	MoveFolder(ctx context.Context, id, folderID string) error
	Upload(ctx context.Context, req UploadRequest) (*UploadedFile, error)
}

// ClientFactory opens a Drive client authorised for actorID.
type ClientFactory interface {
	ForActor(ctx context.Context, actorID string) (Mover, error)
}

// Placement asks for an agreement's stored item to be filed under Folder.
type Placement struct {
	ActorID    string
	ConvenioID string
	FileURL    string
	TypeSlug   string
	Folder     string
}

// Placer files agreement documents into the four well-known folders.
type Placer struct {
	clients        ClientFactory
	folders        map[string]string
	folderTypeSlug string
}

func NewPlacer(clients ClientFactory, cfg config.DriveConfig) *Placer {
	return &Placer{
		clients:        clients,
		folders:        cfg.FolderIDs(),
		folderTypeSlug: cfg.FolderTypeSlug,
	}
}

// FolderID resolves a bucket name to its configured Drive folder.
func (p *Placer) FolderID(folder string) (string, error) {
	id := p.folders[folder]
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrFolderNotConfigured, folder)
	}
	return id, nil
}

// KindFor is the kind of backing item an agreement type uses.
func (p *Placer) KindFor(typeSlug string) Kind {
	if p.folderTypeSlug != "" && typeSlug == p.folderTypeSlug {
		return KindFolder
	}
	return KindFile
}

// Place moves the agreement's stored item into its target folder.
// The type decides file versus folder; the URL only supplies the id.
func (p *Placer) Place(ctx context.Context, pl Placement) error {
	item, ok := ParseItem(pl.FileURL)
	if !ok {
		return ErrNoStoredItem
	}
	target, err := p.FolderID(pl.Folder)
	if err != nil {
		return err
	}

	kind := p.KindFor(pl.TypeSlug)
	if item.Kind != KindUnknown && item.Kind != kind {
		logger.New(ctx).Warnf("storage.place", "convenio_id=%s url_kind=%s type_kind=%s using type", pl.ConvenioID, item.Kind, kind)
	}

	client, err := p.clients.ForActor(ctx, pl.ActorID)
	if err != nil {
		return err
	}

	if kind == KindFolder {
		err = client.MoveFolder(ctx, item.ID, target)
	} else {
		err = client.MoveFile(ctx, item.ID, target)
	}
	if err != nil {
		return err
	}

	logger.New(ctx).Infof("storage.place", "convenio_id=%s item_id=%s folder=%s", pl.ConvenioID, item.ID, pl.Folder)
	return nil
}

// Upload stores a generated document in the folder for bucket.
func (p *Placer) Upload(ctx context.Context, actorID, folder string, req UploadRequest) (*UploadedFile, error) {
	target, err := p.FolderID(folder)
	if err != nil {
		return nil, err
	}
	client, err := p.clients.ForActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	req.FolderID = target
	return client.Upload(ctx, req)
}

// Generated is a freshly rendered document to store alongside an agreement.
type Generated struct {
	ActorID    string
	TypeSlug   string
	Folder     string
	CurrentURL string
	Request    UploadRequest
}

// StoredDocument is where a generated document landed. Pointer is the value the
// agreement's location should hold afterwards; empty means leave it unchanged.
type StoredDocument struct {
	File    *UploadedFile
	Pointer string
}

// StoreGenerated uploads a generated document. File-based agreements get the
// upload in the status bucket and point at the new file. Folder-based ones keep
// pointing at their folder, and the file goes inside it.
func (p *Placer) StoreGenerated(ctx context.Context, g Generated) (*StoredDocument, error) {
	if p.KindFor(g.TypeSlug) != KindFolder {
		f, err := p.Upload(ctx, g.ActorID, g.Folder, g.Request)
		if err != nil {
			return nil, err
		}
		return &StoredDocument{File: f, Pointer: linkFor(f)}, nil
	}

	if item, ok := ParseItem(g.CurrentURL); ok && item.Kind != KindFile {
		client, err := p.clients.ForActor(ctx, g.ActorID)
		if err != nil {
			return nil, err
		}
		req := g.Request
		req.FolderID = item.ID
		f, err := client.Upload(ctx, req)
		if err != nil {
			return nil, err
		}
		return &StoredDocument{File: f}, nil
	}

	// no folder yet; the file is stored but must not become the pointer
	logger.New(ctx).Warnf("storage.store_generated", "type=%s has no folder pointer, uploading to %s", g.TypeSlug, g.Folder)
	f, err := p.Upload(ctx, g.ActorID, g.Folder, g.Request)
	if err != nil {
		return nil, err
	}
	return &StoredDocument{File: f}, nil
}

func linkFor(f *UploadedFile) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return FileURL(f.ID)
}

// AccountClients builds clients from linked admin accounts, sharing one limiter.
type AccountClients struct {
	oauth   *OAuthService
	limiter *rate.Limiter
}

func NewAccountClients(oauth *OAuthService, requestsPerSecond int) *AccountClients {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &AccountClients{
		oauth:   oauth,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond*2),
	}
}

func (a *AccountClients) ForActor(ctx context.Context, actorID string) (Mover, error) {
	ts, owner, err := a.oauth.TokenSource(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if owner != actorID {
		logger.New(ctx).Infof("storage.account", "actor_id=%s using linked account of admin_id=%s", actorID, owner)
	}
	return NewClient(ctx, ts, a.limiter)
}
