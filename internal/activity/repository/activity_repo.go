package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/unicoop/convenios-backend/internal/activity/domain"
)

// ActivityRepository appends to and reads the activity_log table. It has no update or delete.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts one entry, filling ID and CreatedAt
func (r *ActivityRepository) Append(ctx context.Context, e *domain.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	metadataJSON, err := json.Marshal(e.Metadata)
	if err != nil || e.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	var ip sql.NullString
	if e.IPAddress != "" {
		ip = sql.NullString{String: e.IPAddress, Valid: true}
	}

	const q = `
		INSERT INTO activity_log (id, convenio_id, user_id, action, status_from, status_to, metadata, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, q,
		e.ID, e.ConvenioID, e.ActorID, e.Action, e.PrevStatus, e.NewStatus, metadataJSON, ip,
	).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// ListByConvenio returns the history of one agreement, newest first
func (r *ActivityRepository) ListByConvenio(ctx context.Context, convenioID string) ([]domain.Entry, error) {
	const q = `
		SELECT id, convenio_id, user_id, action, status_from, status_to, metadata, ip_address, created_at
		FROM activity_log
		WHERE convenio_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, convenioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Entry, 0, 16)
	for rows.Next() {
		var e domain.Entry
		var from, to, ip sql.NullString
		var metadataJSON []byte
		if err := rows.Scan(&e.ID, &e.ConvenioID, &e.ActorID, &e.Action, &from, &to, &metadataJSON, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		if from.Valid {
			e.PrevStatus = &from.String
		}
		if to.Valid {
			e.NewStatus = &to.String
		}
		e.IPAddress = ip.String
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				e.Metadata = map[string]interface{}{}
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
