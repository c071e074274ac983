package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/unicoop/convenios-backend/config"
	convrepo "github.com/unicoop/convenios-backend/internal/convenios/repository"
	"github.com/unicoop/convenios-backend/internal/convenios/seed"
	"github.com/unicoop/convenios-backend/internal/storage/postgres"
)

func main() {
	dir := flag.String("dir", "migrations", "directory of .sql migration files")
	seedFile := flag.String("seed", "seed/agreement_types.yaml", "agreement type seed file, empty to skip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	applied, err := applyMigrations(ctx, db, *dir)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("migrations applied: %d", applied)

	if *seedFile == "" {
		return
	}
	types, err := seed.LoadFile(*seedFile)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	n, err := seed.Apply(ctx, convrepo.NewTypeRepository(db), types)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("agreement types seeded: %d", n)
}

// applyMigrations runs every .sql file not yet recorded in schema_migrations, in name order.
func applyMigrations(ctx context.Context, db *sql.DB, dir string) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return 0, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	applied := 0
	for _, f := range files {
		name := filepath.Base(f)

		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists); err != nil {
			return applied, err
		}
		if exists {
			continue
		}

		body, err := os.ReadFile(f)
		if err != nil {
			return applied, err
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("%s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			tx.Rollback()
			return applied, err
		}
		if err := tx.Commit(); err != nil {
			return applied, err
		}
		log.Printf("applied %s", name)
		applied++
	}
	return applied, nil
}
