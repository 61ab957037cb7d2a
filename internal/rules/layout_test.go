package rules

import (
	"testing"

	"pyconform/internal/config"
	"pyconform/internal/facts"
)

func TestRequiredDirRule(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layout.RequiredDirs = []string{"apps", "utils/", "tests", "docs"}

	tree := &facts.ProjectTree{
		Root: "/repo",
		Dirs: map[string]bool{"apps": true, "utils": true, "docs": true},
	}

	got := RequiredDirRule{}.CheckTree(tree, cfg)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d: %v", len(got), got)
	}
	v := got[0]
	if v.Symbol != "tests" {
		t.Errorf("expected missing tests/, got %q", v.Symbol)
	}
	if v.File != "." || v.Line != 0 {
		t.Errorf("layout violations anchor to the project root, got %s:%d", v.File, v.Line)
	}
	if v.Severity != SeverityError {
		t.Errorf("expected error severity, got %s", v.Severity)
	}
}

func TestRequiredDirRuleAllPresent(t *testing.T) {
	cfg := config.DefaultConfig()
	tree := &facts.ProjectTree{Root: "/repo", Dirs: map[string]bool{}}
	for _, d := range cfg.Layout.RequiredDirs {
		tree.Dirs[d] = true
	}

	if got := (RequiredDirRule{}).CheckTree(tree, cfg); len(got) != 0 {
		t.Errorf("expected no violations, got %v", got)
	}
}

func TestRegistryMetadataComplete(t *testing.T) {
	r := NewRegistry()
	for _, id := range r.AllIDs() {
		md, ok := MetadataFor(id)
		if !ok {
			t.Errorf("rule %s has no metadata", id)
			continue
		}
		if md.Title == "" || md.Description == "" {
			t.Errorf("rule %s has incomplete metadata", id)
		}
		if _, valid := ParseSeverity(md.Severity); !valid {
			t.Errorf("rule %s has invalid default severity %q", id, md.Severity)
		}
	}
}

func TestNewParseDiagnosticClampsLine(t *testing.T) {
	v := NewParseDiagnostic("bad.py", 0, "cannot parse")
	if v.Line != 1 {
		t.Errorf("expected line clamped to 1, got %d", v.Line)
	}
	if v.RuleID != ParseErrorID || v.Severity != SeverityError {
		t.Errorf("unexpected diagnostic shape: %+v", v)
	}
}
