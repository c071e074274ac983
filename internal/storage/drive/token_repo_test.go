package drive

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepository(db)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	mock.ExpectExec(`INSERT INTO storage_tokens`).
		WithArgs("admin-1", "access", "refresh", "Bearer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Save(ctx, "admin-1", &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: expiry}))

	mock.ExpectQuery(`FROM storage_tokens`).
		WithArgs("admin-1").
		WillReturnRows(sqlmock.NewRows([]string{"access_token", "refresh_token", "token_type", "expiry"}).
			AddRow("access", "refresh", "Bearer", expiry))
	tok, err := repo.Get(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh", tok.RefreshToken)

	mock.ExpectQuery(`FROM storage_tokens`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"access_token", "refresh_token", "token_type", "expiry"}))
	_, err = repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotLinked)

	mock.ExpectQuery(`ORDER BY updated_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"access_token", "refresh_token", "token_type", "expiry", "admin_id"}).
			AddRow("access", nil, nil, nil, "admin-1"))
	tok, owner, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", owner)
	assert.True(t, tok.Expiry.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}
