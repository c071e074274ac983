package domain

import (
	"errors"
	"time"
)

// Role tags used for every authorization check.
const (
	RoleAdmin    = "admin"
	RoleReviewer = "revisor"
	RoleUser     = "user"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrFullNameEmpty   = errors.New("full name required")
)

// Profile extends the hosted auth identity with a display name and role.
// ID is the Firebase UID.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// CanReview reports whether the profile may read the review listings.
func (p *Profile) CanReview() bool {
	return p != nil && (p.Role == RoleAdmin || p.Role == RoleReviewer)
}

// EnsureProfileRequest carries identity data taken from a verified token.
type EnsureProfileRequest struct {
	ID       string
	Email    string
	FullName *string
}
