// Package storage provides the on-disk state of the checker: a per-file
// result cache keyed by content hash and config fingerprint, and a run
// history. Cache failures degrade to logged warnings; they never fail a run.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the SQLite connection at <root>/.pyconform/cache.db.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	path   string
}

const schema = `
CREATE TABLE IF NOT EXISTS file_results (
	path          TEXT NOT NULL,
	content_hash  TEXT NOT NULL,
	config_hash   TEXT NOT NULL,
	tool_version  TEXT NOT NULL,
	violations    TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (path, content_hash, config_hash, tool_version)
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	files       INTEGER NOT NULL,
	errors      INTEGER NOT NULL,
	warnings    INTEGER NOT NULL
);
`

// Open opens or creates the cache database for a project root.
func Open(root string, logger *slog.Logger) (*DB, error) {
	dir := filepath.Join(root, ".pyconform")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create .pyconform directory: %w", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("cache database ready", "path", dbPath)
	return &DB{conn: conn, logger: logger, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
