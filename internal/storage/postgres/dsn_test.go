package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicoop/convenios-backend/config"
)

func TestDSN(t *testing.T) {
	t.Run("explicit DSN wins", func(t *testing.T) {
		cfg := &config.DatabaseConfig{DSN: "postgres://u:p@db:5432/convenios", Host: "ignored"}
		assert.Equal(t, "postgres://u:p@db:5432/convenios", DSN(cfg))
	})

	t.Run("builds from parts", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Host: "localhost", Port: 5433, User: "app", Password: "secret", Name: "convenios"}
		assert.Equal(t, "host=localhost port=5433 user=app password=secret dbname=convenios sslmode=disable", DSN(cfg))
	})
}
