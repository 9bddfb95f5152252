// Package sqlite persists debate documents in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lorenzotomasdiez/debate-arena/internal/store"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Repository is a store.Repository backed by SQLite.
type Repository struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ store.Repository = (*Repository)(nil)

// Summary is a listing row.
type Summary struct {
	ID        string
	UpdatedAt time.Time
}

// Open opens path and creates the schema if needed.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (r *Repository) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

// Load returns the document stored under id.
func (r *Repository) Load(ctx context.Context, id string) ([]byte, error) {
	if r == nil || r.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var body string
	err := r.sqlDB.QueryRowContext(ctx, `SELECT body FROM debates WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load debate: %w", err)
	}
	return []byte(body), nil
}

// Save upserts the document stored under id.
func (r *Repository) Save(ctx context.Context, id string, doc []byte) error {
	if r == nil || r.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("debate id is required")
	}
	_, err := r.sqlDB.ExecContext(
		ctx,
		`INSERT INTO debates (id, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    body = excluded.body,
		    updated_at = excluded.updated_at`,
		id,
		string(doc),
		r.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save debate: %w", err)
	}
	return nil
}

// List returns the most recently written debates, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Summary, error) {
	if r == nil || r.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.sqlDB.QueryContext(ctx, `SELECT id, updated_at FROM debates ORDER BY updated_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list debates: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var updatedAt int64
		if err := rows.Scan(&s.ID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan debate: %w", err)
		}
		s.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list debates: %w", err)
	}
	return out, nil
}
