package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one completed run in the history table.
type RunRecord struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Files     int
	Errors    int
	Warnings  int
}

// RecordRun stores a completed run and returns its generated id.
func (db *DB) RecordRun(rec RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, started_at, duration_ms, files, errors, warnings)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.StartedAt.UTC().Format(time.RFC3339), rec.Duration.Milliseconds(),
		rec.Files, rec.Errors, rec.Warnings)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return rec.ID, nil
}

// RecentRuns returns up to n most recent runs, newest first.
func (db *DB) RecentRuns(n int) ([]RunRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, started_at, duration_ms, files, errors, warnings
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started string
		var durationMs int64
		if err := rows.Scan(&rec.ID, &started, &durationMs, &rec.Files, &rec.Errors, &rec.Warnings); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, started)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
