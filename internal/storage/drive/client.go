package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

var ErrKindMismatch = errors.New("drive item is not of the expected kind")

// UploadRequest is one file to create inside a folder.
type UploadRequest struct {
	Name     string
	MimeType string
	FolderID string
	Content  io.Reader
}

type UploadedFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"web_view_link"`
}

// Client is a rate limited wrapper over the Drive v3 files API.
type Client struct {
	svc     *drive.Service
	limiter *rate.Limiter
}

// NewClient builds a client authorised by ts. limiter may be shared between clients.
func NewClient(ctx context.Context, ts oauth2.TokenSource, limiter *rate.Limiter, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return newClient(ctx, limiter, opts...)
}

func newClient(ctx context.Context, limiter *rate.Limiter, opts ...option.ClientOption) (*Client, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 10)
	}
	return &Client{svc: svc, limiter: limiter}, nil
}

// MoveFile reparents a regular file into folderID
func (c *Client) MoveFile(ctx context.Context, id, folderID string) error {
	return c.move(ctx, id, folderID, KindFile)
}

// MoveFolder reparents a whole folder into folderID
func (c *Client) MoveFolder(ctx context.Context, id, folderID string) error {
	return c.move(ctx, id, folderID, KindFolder)
}

func (c *Client) move(ctx context.Context, id, folderID string, want Kind) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	f, err := c.svc.Files.Get(id).
		Fields("id", "mimeType", "parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get %s: %w", id, err)
	}

	isFolder := f.MimeType == folderMimeType
	if (want == KindFolder) != isFolder {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, id, f.MimeType)
	}

	var remove []string
	for _, p := range f.Parents {
		if p == folderID {
			// already there
			return nil
		}
		remove = append(remove, p)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	call := c.svc.Files.Update(id, &drive.File{}).
		AddParents(folderID).
		SupportsAllDrives(true).
		Fields("id", "parents").
		Context(ctx)
	if len(remove) > 0 {
		call = call.RemoveParents(strings.Join(remove, ","))
	}
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("move %s to %s: %w", id, folderID, err)
	}
	return nil
}

// Upload creates a new file in req.FolderID
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*UploadedFile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	meta := &drive.File{Name: req.Name, MimeType: req.MimeType}
	if req.FolderID != "" {
		meta.Parents = []string{req.FolderID}
	}

	f, err := c.svc.Files.Create(meta).
		Media(req.Content).
		SupportsAllDrives(true).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", req.Name, err)
	}

	link := f.WebViewLink
	if link == "" {
		link = FileURL(f.Id)
	}
	return &UploadedFile{ID: f.Id, Name: f.Name, WebViewLink: link}, nil
}
