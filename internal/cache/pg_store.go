package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB interface for database operations (compatible with pgxpool.Pool and pgxmock)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// PGStore keeps cache records in the cache_entries table
type PGStore struct {
	db DB
}

// NewPGStore creates a new PostgreSQL store
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// NewPGStoreWithDB creates a new PostgreSQL store with custom DB interface
func NewPGStoreWithDB(db DB) *PGStore {
	return &PGStore{db: db}
}

// Get retrieves a value by key
func (s *PGStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM cache_entries
		WHERE key = $1
	`

	var value []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	return value, nil
}

// Set stores a value, replacing any previous one
func (s *PGStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO cache_entries (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

// Delete removes a key
func (s *PGStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM cache_entries WHERE key = $1`
	if _, err := s.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

var _ Store = (*PGStore)(nil)
