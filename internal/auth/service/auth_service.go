package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/unicoop/convenios-backend/internal/auth/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserDirectory resolves identities through the hosted auth admin API.
// Satisfied by *auth.Client.
type UserDirectory interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Ensure(ctx context.Context, req domain.EnsureProfileRequest) (*domain.Profile, error)
	ListByRole(ctx context.Context, role string) ([]domain.Profile, error)
	UpdateFullName(ctx context.Context, id, fullName string) (*domain.Profile, error)
}

type AuthService struct {
	verifier  TokenVerifier
	directory UserDirectory
	profiles  ProfileStore
}

func NewAuthService(verifier TokenVerifier, directory UserDirectory, profiles ProfileStore) *AuthService {
	return &AuthService{
		verifier:  verifier,
		directory: directory,
		profiles:  profiles,
	}
}

// Authenticate verifies an ID token and returns the caller's profile,
// creating it with the default role on first sign in.
func (s *AuthService) Authenticate(ctx context.Context, idToken string) (*domain.Profile, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidToken
	}

	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	req := domain.EnsureProfileRequest{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		req.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		req.FullName = &name
	}

	return s.profiles.Ensure(ctx, req)
}

// GetProfile retrieves a profile by Firebase UID
func (s *AuthService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateFullName changes the caller's display name
func (s *AuthService) UpdateFullName(ctx context.Context, id, fullName string) (*domain.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.ErrFullNameEmpty
	}
	return s.profiles.UpdateFullName(ctx, id, fullName)
}

// ListAdmins returns every administrator profile
func (s *AuthService) ListAdmins(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.ListByRole(ctx, domain.RoleAdmin)
}

// ResolveEmail looks the user up in the hosted identity service, falling
// back to the email cached on the profile.
func (s *AuthService) ResolveEmail(ctx context.Context, uid string) (string, error) {
	if s.directory != nil {
		rec, err := s.directory.GetUser(ctx, uid)
		if err == nil && rec != nil && rec.UserInfo != nil && rec.Email != "" {
			return rec.Email, nil
		}
	}

	p, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	if p.Email == "" {
		return "", fmt.Errorf("no email on record for %s", uid)
	}
	return p.Email, nil
}
