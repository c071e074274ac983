package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"

	"github.com/unicoop/convenios-backend/config"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

type States interface {
	Save(ctx context.Context, state, adminID string) error
	Consume(ctx context.Context, state string) (string, error)
}

type Tokens interface {
	Save(ctx context.Context, adminID string, tok *oauth2.Token) error
	Get(ctx context.Context, adminID string) (*oauth2.Token, error)
	Latest(ctx context.Context) (*oauth2.Token, string, error)
}

// OAuthService links administrators' storage accounts and hands out token sources.
type OAuthService struct {
	conf   *oauth2.Config
	states States
	tokens Tokens
}

// NewOAuthConfig builds the Google OAuth client for Drive access.
func NewOAuthConfig(cfg config.DriveConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{drive.DriveScope},
		Endpoint:     google.Endpoint,
	}
}

func NewOAuthService(conf *oauth2.Config, states States, tokens Tokens) *OAuthService {
	return &OAuthService{conf: conf, states: states, tokens: tokens}
}

// ConnectURL starts the consent flow for adminID
func (s *OAuthService) ConnectURL(ctx context.Context, adminID string) (string, error) {
	if strings.TrimSpace(adminID) == "" {
		return "", fmt.Errorf("admin id required")
	}
	if s.conf.ClientID == "" {
		return "", fmt.Errorf("storage oauth client not configured")
	}

	state := uuid.New().String()
	if err := s.states.Save(ctx, state, adminID); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	// offline + forced consent so a refresh token is always issued
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Callback completes the flow and stores the token under the admin who started it.
func (s *OAuthService) Callback(ctx context.Context, state, code string) (string, error) {
	if state == "" || code == "" {
		return "", ErrInvalidState
	}
	adminID, err := s.states.Consume(ctx, state)
	if err != nil {
		return "", err
	}

	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if err := s.tokens.Save(ctx, adminID, tok); err != nil {
		return "", err
	}
	return adminID, nil
}

// TokenSource prefers the actor's own linked account and falls back to the
// most recently linked one. Refreshed tokens are written back.
func (s *OAuthService) TokenSource(ctx context.Context, actorID string) (oauth2.TokenSource, string, error) {
	owner := actorID
	var tok *oauth2.Token
	var err error

	if actorID != "" {
		tok, err = s.tokens.Get(ctx, actorID)
	}
	if actorID == "" || errors.Is(err, ErrNotLinked) {
		tok, owner, err = s.tokens.Latest(ctx)
	}
	if err != nil {
		return nil, "", err
	}

	// the refresh must outlive the request that triggered it
	base := s.conf.TokenSource(context.WithoutCancel(ctx), tok)
	return &persistingSource{
		base:    base,
		last:    tok.AccessToken,
		ownerID: owner,
		tokens:  s.tokens,
		ctx:     context.WithoutCancel(ctx),
	}, owner, nil
}

// persistingSource saves the token whenever the underlying source refreshes it.
type persistingSource struct {
	mu      sync.Mutex
	base    oauth2.TokenSource
	last    string
	ownerID string
	tokens  Tokens
	ctx     context.Context
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.tokens.Save(p.ctx, p.ownerID, tok); err != nil {
			logger.New(p.ctx).Errorf("storage.token_refresh", "admin_id=%s error=%v", p.ownerID, err)
		}
	}
	return tok, nil
}
