package postgres

import (
	"fmt"

	"github.com/unicoop/convenios-backend/config"
)

// DSN prefers an explicit DB_DSN and otherwise builds a keyword/value string.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}
