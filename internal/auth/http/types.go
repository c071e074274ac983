package http

import (
	"context"

	"github.com/unicoop/convenios-backend/internal/auth/domain"
)

// ProfileService is satisfied by *service.AuthService.
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateFullName(ctx context.Context, id, fullName string) (*domain.Profile, error)
}

type Handler struct {
	profiles ProfileService
}

func New(profiles ProfileService) *Handler {
	return &Handler{profiles: profiles}
}
