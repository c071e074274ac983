package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unicoop/convenios-backend/internal/mailer"
	"github.com/unicoop/convenios-backend/internal/notifications/domain"
)

type Store interface {
	Insert(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// EmailResolver finds a user's address through the identity service.
type EmailResolver interface {
	ResolveEmail(ctx context.Context, uid string) (string, error)
}

// Request describes one notification to deliver.
type Request struct {
	Event      domain.Event
	UserID     string
	ConvenioID string
	Params     domain.Params
	// OwnerName is only used for the correction email greeting.
	OwnerName string
}

type Notifier struct {
	store      Store
	sender     mailer.Sender
	emails     EmailResolver
	appBaseURL string
}

func NewNotifier(store Store, sender mailer.Sender, emails EmailResolver, appBaseURL string) *Notifier {
	if sender == nil {
		sender = mailer.NoopSender{}
	}
	return &Notifier{
		store:      store,
		sender:     sender,
		emails:     emails,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// Notify inserts the notification row for req. For EventCorrected it also
// sends the correction email, whether or not the insert succeeded.
func (n *Notifier) Notify(ctx context.Context, req Request) error {
	if req.UserID == "" {
		return fmt.Errorf("notification recipient required")
	}

	msg, err := domain.Render(req.Event, req.Params)
	if err != nil {
		return err
	}

	row := &domain.Notification{
		UserID:  req.UserID,
		Title:   msg.Title,
		Message: msg.Message,
		Type:    msg.Severity,
	}
	if req.ConvenioID != "" {
		id := req.ConvenioID
		row.ConvenioID = &id
	}
	insertErr := n.store.Insert(ctx, row)

	var mailErr error
	if req.Event == domain.EventCorrected {
		mailErr = n.SendCorrectionEmail(ctx, req)
	}

	return errors.Join(insertErr, mailErr)
}

// SendCorrectionEmail emails the owner the observations left by the reviewer.
func (n *Notifier) SendCorrectionEmail(ctx context.Context, req Request) error {
	if n.emails == nil {
		return fmt.Errorf("no email resolver configured")
	}
	to, err := n.emails.ResolveEmail(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("resolve owner email: %w", err)
	}

	email, err := mailer.CorrectionEmail{
		To:            to,
		OwnerName:     req.OwnerName,
		ConvenioTitle: req.Params.ConvenioTitle,
		Observations:  req.Params.Comment,
		Link:          n.convenioLink(req.ConvenioID),
	}.Build()
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, email)
}

// List returns the caller's notifications
func (n *Notifier) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	return n.store.ListByUser(ctx, userID, unreadOnly, limit)
}

// MarkRead flags one of the caller's notifications as read
func (n *Notifier) MarkRead(ctx context.Context, id, userID string) error {
	return n.store.MarkRead(ctx, id, userID)
}

func (n *Notifier) convenioLink(convenioID string) string {
	if n.appBaseURL == "" || convenioID == "" {
		return ""
	}
	return n.appBaseURL + "/app/convenios/" + convenioID
}
