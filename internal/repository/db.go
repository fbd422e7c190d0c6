// Package repository implements the Persistence Adapter (C8): pure CRUD
// over the entity set plus the sharp-snapshot time series, backed by
// Postgres.
package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"mispricing-detector/internal/config"
)

// Open connects to Postgres using lib/pq and verifies connectivity.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: ping postgres: %w", err)
	}
	return db, nil
}
