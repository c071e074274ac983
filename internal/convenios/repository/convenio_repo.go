package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
)

// ConvenioRepository provides persistence operations for agreements
type ConvenioRepository struct {
	db *sql.DB
}

func NewConvenioRepository(db *sql.DB) *ConvenioRepository {
	return &ConvenioRepository{db: db}
}

const convenioColumns = `id, serial_number, title, convenio_type_id, status, user_id, reviewer_id,
		content, document_url, submitted_at, approved_at, archived_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConvenio(s rowScanner) (*domain.Convenio, error) {
	var c domain.Convenio
	var reviewerID, fileURL sql.NullString
	var submittedAt, approvedAt, archivedAt sql.NullTime
	var contentJSON []byte

	if err := s.Scan(
		&c.ID, &c.SerialNumber, &c.Title, &c.TypeID, &c.Status, &c.OwnerID, &reviewerID,
		&contentJSON, &fileURL, &submittedAt, &approvedAt, &archivedAt, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if reviewerID.Valid {
		c.ReviewerID = &reviewerID.String
	}
	if fileURL.Valid {
		c.FileURL = &fileURL.String
	}
	if submittedAt.Valid {
		c.SubmittedAt = &submittedAt.Time
	}
	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}
	if archivedAt.Valid {
		c.ArchivedAt = &archivedAt.Time
	}
	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &c.Content); err != nil {
			return nil, fmt.Errorf("decode content of %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func scanConvenios(rows *sql.Rows) ([]domain.Convenio, error) {
	defer rows.Close()
	out := make([]domain.Convenio, 0, 16)
	for rows.Next() {
		c, err := scanConvenio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Create inserts a new draft. ID, SerialNumber and timestamps are filled in.
func (r *ConvenioRepository) Create(ctx context.Context, c *domain.Convenio) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.StatusDraft
	}
	contentJSON, err := json.Marshal(c.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	const q = `
		INSERT INTO convenios (id, title, convenio_type_id, status, user_id, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING serial_number, created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, q, c.ID, c.Title, c.TypeID, c.Status, c.OwnerID, contentJSON).
		Scan(&c.SerialNumber, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert convenio: %w", err)
	}
	return nil
}

func (r *ConvenioRepository) GetByID(ctx context.Context, id string) (*domain.Convenio, error) {
	q := `SELECT ` + convenioColumns + ` FROM convenios WHERE id = $1`
	c, err := scanConvenio(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConvenioNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns agreements matching f, newest first
func (r *ConvenioRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.Convenio, error) {
	var where []string
	var args []interface{}

	if len(f.Statuses) > 0 {
		args = append(args, pq.Array(f.Statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if f.TypeID != "" {
		args = append(args, f.TypeID)
		where = append(where, fmt.Sprintf("convenio_type_id = $%d", len(args)))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	q := `SELECT ` + convenioColumns + ` FROM convenios`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanConvenios(rows)
}

// ListByIDs fetches a batch of agreements in one round trip
func (r *ConvenioRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Convenio, error) {
	if len(ids) == 0 {
		return []domain.Convenio{}, nil
	}
	q := `SELECT ` + convenioColumns + ` FROM convenios WHERE id = ANY($1) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanConvenios(rows)
}

// UpdateContent replaces title and form data while the agreement is still editable.
// Returns ErrNotEditable when the row exists but has left an editable status.
func (r *ConvenioRepository) UpdateContent(ctx context.Context, id, title string, content domain.FormData) (*domain.Convenio, error) {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	q := `
		UPDATE convenios
		SET title = $2, content = $3, updated_at = now()
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + convenioColumns
	c, err := scanConvenio(r.db.QueryRowContext(ctx, q, id, title, contentJSON,
		pq.Array([]string{domain.StatusDraft, domain.StatusInReview})))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotEditable
		}
		return nil, err
	}
	return c, nil
}

// UpdateStatus applies u only if the row is still in u.From.
// A lost race surfaces as ErrInvalidPrecondition and changes nothing.
func (r *ConvenioRepository) UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) error {
	const q = `
		UPDATE convenios
		SET status = $2,
		    reviewer_id = COALESCE($3, reviewer_id),
		    submitted_at = COALESCE($4, submitted_at),
		    approved_at = COALESCE($5, approved_at),
		    archived_at = COALESCE($6, archived_at),
		    updated_at = now()
		WHERE id = $1 AND status = $7
	`
	result, err := r.db.ExecContext(ctx, q, id, u.To, u.ReviewerID, u.SubmittedAt, u.ApprovedAt, u.ArchivedAt, u.From)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: status changed concurrently", domain.ErrInvalidPrecondition)
	}
	return nil
}

// UpdateFileURL points the agreement at its stored document
func (r *ConvenioRepository) UpdateFileURL(ctx context.Context, id, url string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE convenios SET document_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConvenioNotFound
	}
	return nil
}

// ListStale returns agreements in one of statuses untouched since before
func (r *ConvenioRepository) ListStale(ctx context.Context, statuses []string, before time.Time) ([]domain.Convenio, error) {
	q := `SELECT ` + convenioColumns + `
		FROM convenios
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at ASC`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(statuses), before)
	if err != nil {
		return nil, err
	}
	return scanConvenios(rows)
}

// MigrateDraftsToSubmitted moves drafts that were already sent (they carry a
// submission stamp or a document) to enviado and returns their ids.
func (r *ConvenioRepository) MigrateDraftsToSubmitted(ctx context.Context) ([]string, error) {
	const q = `
		UPDATE convenios
		SET status = $1,
		    submitted_at = COALESCE(submitted_at, updated_at),
		    updated_at = now()
		WHERE status = $2
		  AND (submitted_at IS NOT NULL OR document_url IS NOT NULL)
		RETURNING id
	`
	return r.returningIDs(ctx, q, domain.StatusSubmitted, domain.StatusDraft)
}

// CopyLegacyFields moves legacy_form_data into content for rows that have no
// form data yet, and returns their ids.
func (r *ConvenioRepository) CopyLegacyFields(ctx context.Context) ([]string, error) {
	const q = `
		UPDATE convenios
		SET content = jsonb_build_object(
		        'steps', jsonb_build_object('legacy', legacy_form_data)
		    ),
		    updated_at = now()
		WHERE legacy_form_data IS NOT NULL
		  AND legacy_form_data <> '{}'::jsonb
		  AND (content IS NULL OR content = '{}'::jsonb OR content->'steps' IS NULL OR content->'steps' = '{}'::jsonb)
		RETURNING id
	`
	return r.returningIDs(ctx, q)
}

func (r *ConvenioRepository) returningIDs(ctx context.Context, q string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
