package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"pyconform/internal/rules"
)

// Cache reads and writes cached per-file violation lists. A hit requires
// the same path, content hash, config fingerprint and tool version, so any
// change in any of them invalidates the entry naturally.
type Cache struct {
	db *DB
}

// NewCache creates a cache over an open database.
func NewCache(db *DB) *Cache {
	return &Cache{db: db}
}

// HashContent returns the content hash used as part of the cache key.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached violations for a file, or ok=false on a miss.
func (c *Cache) Get(path, contentHash, configHash, version string) ([]rules.Violation, bool, error) {
	var payload string
	err := c.db.conn.QueryRow(`
		SELECT violations FROM file_results
		WHERE path = ? AND content_hash = ? AND config_hash = ? AND tool_version = ?
	`, path, contentHash, configHash, version).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	var violations []rules.Violation
	if err := json.Unmarshal([]byte(payload), &violations); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for %s: %w", path, err)
	}
	return violations, true, nil
}

// Put stores the violations for a file, replacing older entries for the
// same path so the table does not grow with every edit.
func (c *Cache) Put(path, contentHash, configHash, version string, violations []rules.Violation) error {
	payload, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("failed to encode violations: %w", err)
	}

	tx, err := c.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM file_results WHERE path = ?`, path); err != nil {
		return fmt.Errorf("cache eviction failed: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO file_results (path, content_hash, config_hash, tool_version, violations, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, path, contentHash, configHash, version, string(payload), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return tx.Commit()
}
