package storage

import (
	"testing"
	"time"

	"pyconform/internal/logutil"
	"pyconform/internal/rules"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), logutil.NewDiscard())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCacheMissThenHit(t *testing.T) {
	cache := NewCache(openTestDB(t))

	content := HashContent([]byte("x = 1\n"))
	if _, ok, err := cache.Get("a.py", content, "cfg1", "0.3.0"); err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}

	stored := []rules.Violation{
		{File: "a.py", Line: 2, Severity: rules.SeverityError, RuleID: rules.RuleMagicNumber, Message: "magic number 3"},
	}
	if err := cache.Put("a.py", content, "cfg1", "0.3.0", stored); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, ok, err := cache.Get("a.py", content, "cfg1", "0.3.0")
	if err != nil || !ok {
		t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].RuleID != rules.RuleMagicNumber {
		t.Errorf("cached violations corrupted: %+v", got)
	}
}

func TestCacheKeyComponents(t *testing.T) {
	cache := NewCache(openTestDB(t))

	content := HashContent([]byte("x = 1\n"))
	if err := cache.Put("a.py", content, "cfg1", "0.3.0", nil); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	tests := []struct {
		name                        string
		path, content, cfg, version string
	}{
		{"different content", "a.py", HashContent([]byte("x = 2\n")), "cfg1", "0.3.0"},
		{"different config", "a.py", content, "cfg2", "0.3.0"},
		{"different version", "a.py", content, "cfg1", "0.4.0"},
		{"different path", "b.py", content, "cfg1", "0.3.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok, err := cache.Get(tt.path, tt.content, tt.cfg, tt.version); err != nil || ok {
				t.Errorf("expected a miss, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestCachePutReplacesOldEntries(t *testing.T) {
	cache := NewCache(openTestDB(t))

	old := HashContent([]byte("v1"))
	if err := cache.Put("a.py", old, "cfg1", "0.3.0", nil); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("a.py", HashContent([]byte("v2")), "cfg1", "0.3.0", nil); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := cache.Get("a.py", old, "cfg1", "0.3.0"); ok {
		t.Error("stale entry for the old content hash should be evicted")
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)

	first, err := db.RecordRun(RunRecord{
		StartedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Duration:  120 * time.Millisecond,
		Files:     4,
		Errors:    1,
		Warnings:  2,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if first == "" {
		t.Fatal("expected a generated run id")
	}

	if _, err := db.RecordRun(RunRecord{
		StartedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		Duration:  80 * time.Millisecond,
		Files:     4,
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Error("runs should be newest first")
	}
	if runs[1].ID != first || runs[1].Errors != 1 || runs[1].Warnings != 2 {
		t.Errorf("first run round-tripped incorrectly: %+v", runs[1])
	}
}
