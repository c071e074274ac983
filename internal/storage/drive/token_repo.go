package drive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

var ErrNotLinked = errors.New("no storage account linked")

// TokenRepository keeps one OAuth token per administrator in storage_tokens.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the admin's token. An empty refresh token keeps the stored one,
// since Google only returns it on the first consent.
func (r *TokenRepository) Save(ctx context.Context, adminID string, tok *oauth2.Token) error {
	var expiry sql.NullTime
	if !tok.Expiry.IsZero() {
		expiry = sql.NullTime{Time: tok.Expiry, Valid: true}
	}

	const q = `
		INSERT INTO storage_tokens (admin_id, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (admin_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), storage_tokens.refresh_token),
		    token_type = EXCLUDED.token_type,
		    expiry = EXCLUDED.expiry,
		    updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, q, adminID, tok.AccessToken, tok.RefreshToken, tok.TokenType, expiry); err != nil {
		return fmt.Errorf("save storage token: %w", err)
	}
	return nil
}

// Get loads the token linked by adminID
func (r *TokenRepository) Get(ctx context.Context, adminID string) (*oauth2.Token, error) {
	const q = `
		SELECT access_token, refresh_token, token_type, expiry
		FROM storage_tokens
		WHERE admin_id = $1
	`
	tok, _, err := scanToken(r.db.QueryRowContext(ctx, q, adminID), false)
	return tok, err
}

// Latest returns the most recently linked token and its owner
func (r *TokenRepository) Latest(ctx context.Context) (*oauth2.Token, string, error) {
	const q = `
		SELECT access_token, refresh_token, token_type, expiry, admin_id
		FROM storage_tokens
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return scanToken(r.db.QueryRowContext(ctx, q), true)
}

func scanToken(row *sql.Row, withOwner bool) (*oauth2.Token, string, error) {
	var tok oauth2.Token
	var refresh, tokenType sql.NullString
	var expiry sql.NullTime
	var owner string

	dest := []interface{}{&tok.AccessToken, &refresh, &tokenType, &expiry}
	if withOwner {
		dest = append(dest, &owner)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotLinked
		}
		return nil, "", err
	}
	tok.RefreshToken = refresh.String
	tok.TokenType = tokenType.String
	if expiry.Valid {
		tok.Expiry = expiry.Time
	}
	return &tok, owner, nil
}
