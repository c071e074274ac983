package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/unicoop/convenios-backend/internal/auth/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID retrieves a profile by its Firebase UID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const q = `
		SELECT id, email, full_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p domain.Profile
	var fullName sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Email, &fullName, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	return &p, nil
}

// Ensure creates the profile on first sight and refreshes email/name afterwards.
// The role column is never touched here; roles are assigned by administrators.
func (r *ProfileRepository) Ensure(ctx context.Context, req domain.EnsureProfileRequest) (*domain.Profile, error) {
	const q = `
		INSERT INTO profiles (id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = COALESCE(NULLIF(EXCLUDED.email, ''), profiles.email),
		    full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
		    updated_at = NOW()
		RETURNING id, email, full_name, role, created_at, updated_at
	`

	var p domain.Profile
	var fullName sql.NullString
	err := r.db.QueryRowContext(ctx, q, req.ID, req.Email, req.FullName, domain.RoleUser).Scan(
		&p.ID, &p.Email, &fullName, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	return &p, nil
}

// ListByRole returns every profile holding role, oldest first.
func (r *ProfileRepository) ListByRole(ctx context.Context, role string) ([]domain.Profile, error) {
	const q = `
		SELECT id, email, full_name, role, created_at, updated_at
		FROM profiles
		WHERE role = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Profile, 0, 4)
	for rows.Next() {
		var p domain.Profile
		var fullName sql.NullString
		if err := rows.Scan(&p.ID, &p.Email, &fullName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if fullName.Valid {
			p.FullName = &fullName.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateFullName changes the display name of a profile
func (r *ProfileRepository) UpdateFullName(ctx context.Context, id, fullName string) (*domain.Profile, error) {
	const q = `
		UPDATE profiles
		SET full_name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, full_name, role, created_at, updated_at
	`
	var p domain.Profile
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, q, id, fullName).Scan(
		&p.ID, &p.Email, &name, &p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if name.Valid {
		p.FullName = &name.String
	}
	return &p, nil
}
