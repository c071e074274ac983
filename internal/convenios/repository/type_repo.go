package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
)

// TypeRepository reads the agreement type reference table
type TypeRepository struct {
	db *sql.DB
}

func NewTypeRepository(db *sql.DB) *TypeRepository {
	return &TypeRepository{db: db}
}

const typeColumns = `id, name, slug, description, template, created_at`

func scanType(s rowScanner) (*domain.AgreementType, error) {
	var t domain.AgreementType
	var description sql.NullString
	var templateJSON []byte
	if err := s.Scan(&t.ID, &t.Name, &t.Slug, &description, &templateJSON, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	if len(templateJSON) > 0 {
		if err := json.Unmarshal(templateJSON, &t.Template); err != nil {
			return nil, fmt.Errorf("decode template of %s: %w", t.Slug, err)
		}
	}
	return &t, nil
}

func (r *TypeRepository) List(ctx context.Context) ([]domain.AgreementType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+typeColumns+` FROM convenio_types ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AgreementType, 0, 8)
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TypeRepository) GetByID(ctx context.Context, id string) (*domain.AgreementType, error) {
	return r.getOne(ctx, `SELECT `+typeColumns+` FROM convenio_types WHERE id = $1`, id)
}

func (r *TypeRepository) GetBySlug(ctx context.Context, slug string) (*domain.AgreementType, error) {
	return r.getOne(ctx, `SELECT `+typeColumns+` FROM convenio_types WHERE slug = $1`, slug)
}

func (r *TypeRepository) getOne(ctx context.Context, q string, arg string) (*domain.AgreementType, error) {
	t, err := scanType(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTypeNotFound
		}
		return nil, err
	}
	return t, nil
}

// Upsert inserts or refreshes a type keyed by slug. Used by the seeder.
func (r *TypeRepository) Upsert(ctx context.Context, t *domain.AgreementType) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	templateJSON, err := json.Marshal(t.Template)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}

	const q = `
		INSERT INTO convenio_types (id, name, slug, description, template)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    template = EXCLUDED.template
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q, t.ID, t.Name, t.Slug, t.Description, templateJSON).Scan(&t.ID, &t.CreatedAt)
}
