package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicoop/convenios-backend/internal/notifications/domain"
)

func TestNotificationRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewNotificationRepository(db)

	convenioID := "c1"
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), "u1", "Convenio aprobado", "msg", domain.SeveritySuccess, convenioID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	n := &domain.Notification{UserID: "u1", Title: "Convenio aprobado", Message: "msg", Type: domain.SeveritySuccess, ConvenioID: &convenioID}
	require.NoError(t, repo.Insert(context.Background(), n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(`SELECT id, user_id, title, message, type, convenio_id, read, created_at`).
		WithArgs("u1", true, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "convenio_id", "read", "created_at"}).
			AddRow("n1", "u1", "t", "m", "info", nil, false, time.Now()).
			AddRow("n2", "u1", "t", "m", "info", "c1", false, time.Now()))

	items, err := repo.ListByUser(context.Background(), "u1", true, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].ConvenioID)
	assert.Equal(t, "c1", *items[1].ConvenioID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(`UPDATE notifications SET read = true`).
		WithArgs("n1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE notifications SET read = true`).
		WithArgs("n1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkRead(context.Background(), "n1", "u1"))
	assert.ErrorIs(t, repo.MarkRead(context.Background(), "n1", "intruder"), domain.ErrNotificationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
