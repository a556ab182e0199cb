// Package history remembers the paths confirmed for each field type so the
// form can offer them as completions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filefield/internal/logging"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS recent_paths (
	field_type TEXT NOT NULL,
	path       TEXT NOT NULL,
	uses       INTEGER NOT NULL DEFAULT 1,
	used_at    INTEGER NOT NULL,
	PRIMARY KEY (field_type, path)
);
CREATE INDEX IF NOT EXISTS idx_recent_paths_used ON recent_paths(field_type, used_at DESC);
`

// Entry is one remembered path.
type Entry struct {
	FieldType string
	Path      string
	Uses      int
	UsedAt    time.Time
}

// Store is a SQLite-backed recent path list.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init history schema: %w", err)
	}

	return &Store{
		db:     db,
		now:    time.Now,
		logger: logging.Get(logging.CategoryHistory),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record marks path as used for fieldType.
func (s *Store) Record(ctx context.Context, fieldType, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recent_paths (field_type, path, uses, used_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(field_type, path) DO UPDATE SET uses = uses + 1, used_at = excluded.used_at`,
		fieldType, path, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", path, err)
	}
	s.logger.Debug("recorded", zap.String("type", fieldType), zap.String("path", path))
	return nil
}

// Recent returns up to limit entries for fieldType, most recent first.
func (s *Store) Recent(ctx context.Context, fieldType string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT field_type, path, uses, used_at FROM recent_paths
		WHERE field_type = ?
		ORDER BY used_at DESC, path ASC
		LIMIT ?`, fieldType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var usedAt int64
		if err := rows.Scan(&e.FieldType, &e.Path, &e.Uses, &usedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.UsedAt = time.Unix(0, usedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Paths is Recent reduced to the path strings.
func (s *Store) Paths(ctx context.Context, fieldType string, limit int) ([]string, error) {
	entries, err := s.Recent(ctx, fieldType, limit)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths, nil
}

// Forget removes a path, e.g. after it stopped existing.
func (s *Store) Forget(ctx context.Context, fieldType, path string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM recent_paths WHERE field_type = ? AND path = ?`, fieldType, path); err != nil {
		return fmt.Errorf("failed to forget %s: %w", path, err)
	}
	return nil
}
