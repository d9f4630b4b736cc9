// Package postgres persists the store snapshot in PostgreSQL for
// deployments that already run one. Same single-record contract as the
// sqlite backend.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SnapshotStore stores the full application state as one row keyed by
// namespace.
type SnapshotStore struct {
	db        *sql.DB
	namespace string
}

// Open connects to the database at url and runs migrations.
func Open(url, namespace string) (*SnapshotStore, error) {
	if namespace == "" {
		return nil, errors.New("namespace cannot be empty")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SnapshotStore{db: db, namespace: namespace}, nil
}

// Load returns the stored snapshot, or (nil, nil) when none exists yet.
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM snapshots WHERE namespace = $1", s.namespace,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}

// Save writes the snapshot, replacing any previous one for the namespace.
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (namespace, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.namespace, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
