package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
)

type ObservationRepository struct {
	db *sql.DB
}

func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) Create(ctx context.Context, o *domain.Observation) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO observations (id, convenio_id, author_id, content, resolved)
		VALUES ($1, $2, $3, $4, false)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, q, o.ID, o.ConvenioID, o.AuthorID, o.Content).Scan(&o.CreatedAt); err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	o.Resolved = false
	return nil
}

// ListByConvenio returns observations oldest first
func (r *ObservationRepository) ListByConvenio(ctx context.Context, convenioID string) ([]domain.Observation, error) {
	const q = `
		SELECT id, convenio_id, author_id, content, resolved, created_at
		FROM observations
		WHERE convenio_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, convenioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Observation, 0, 8)
	for rows.Next() {
		var o domain.Observation
		if err := rows.Scan(&o.ID, &o.ConvenioID, &o.AuthorID, &o.Content, &o.Resolved, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Resolve flips the resolved flag. It is the only mutation observations allow.
func (r *ObservationRepository) Resolve(ctx context.Context, id string) (*domain.Observation, error) {
	const q = `
		UPDATE observations SET resolved = true
		WHERE id = $1
		RETURNING id, convenio_id, author_id, content, resolved, created_at
	`
	var o domain.Observation
	err := r.db.QueryRowContext(ctx, q, id).Scan(&o.ID, &o.ConvenioID, &o.AuthorID, &o.Content, &o.Resolved, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrObservationNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ResolveOpen marks every open observation of a convenio resolved
func (r *ObservationRepository) ResolveOpen(ctx context.Context, convenioID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE observations SET resolved = true WHERE convenio_id = $1 AND resolved = false`, convenioID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
