//go:build cgo

package analyzer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"pyconform/internal/config"
	"pyconform/internal/logutil"
	"pyconform/internal/report"
	"pyconform/internal/rules"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// buildProject lays out a small Python project exercising every rule:
// one clean file, one with naming/typing/magic violations, one with a
// generic name in a large scope, one unparseable, one excluded by glob,
// and a missing tests/ directory.
func buildProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, dir := range []string{"apps", "utils", "docs"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeFile(t, root, "apps/clean.py", `MAX_ATTEMPTS: int = 3


def process_payment(amount: float, attempts: int) -> bool:
    return attempts < MAX_ATTEMPTS
`)

	writeFile(t, root, "apps/legacy.py", `def Update(x):
    return x > 3
`)

	writeFile(t, root, "utils/report_builder.py", `def build_report(items: list) -> int:
    data = items
    total = 0
    count = 0
    for item in data:
        total += 1
        count += 1
    return total
`)

	writeFile(t, root, "apps/broken.py", `def broken(:
    pass
`)

	writeFile(t, root, "apps/gen_models.py", `def GeneratedThing(x):
    return x * 99
`)

	return root
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ExcludePaths = append(cfg.ExcludePaths, "gen_*.py")
	cfg.Analysis.Workers = 2
	return cfg
}

func violationsFor(rep *report.Report, file string) []rules.Violation {
	var out []rules.Violation
	for _, v := range rep.Violations {
		if v.File == file {
			out = append(out, v)
		}
	}
	return out
}

func TestRunFullProject(t *testing.T) {
	root := buildProject(t)
	a := New(root, testConfig(), logutil.NewDiscard(), "test")

	rep, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// gen_models.py is excluded at discovery, leaving four files.
	if rep.Files != 4 {
		t.Errorf("expected 4 analyzed files, got %d", rep.Files)
	}

	if got := violationsFor(rep, "apps/clean.py"); len(got) != 0 {
		t.Errorf("clean file should have no violations, got %+v", got)
	}

	legacy := violationsFor(rep, "apps/legacy.py")
	if len(legacy) != 3 {
		t.Fatalf("expected 3 violations in legacy.py, got %d: %+v", len(legacy), legacy)
	}
	gotIDs := map[string]bool{}
	for _, v := range legacy {
		gotIDs[v.RuleID] = true
	}
	for _, id := range []string{rules.RuleSnakeCase, rules.RuleMissingHint, rules.RuleMagicNumber} {
		if !gotIDs[id] {
			t.Errorf("legacy.py missing expected violation %s", id)
		}
	}
	// "Update" is not a plain-lowercase token; the verb lexicon fails open.
	if gotIDs[rules.RuleVerbPrefix] {
		t.Error("verb_prefix must not fire on a mixed-case name")
	}

	builder := violationsFor(rep, "utils/report_builder.py")
	if len(builder) != 1 || builder[0].RuleID != rules.RuleGenericName {
		t.Errorf("expected one generic_name violation, got %+v", builder)
	}
	if builder[0].Symbol != "data" {
		t.Errorf("expected the generic name to be data, got %q", builder[0].Symbol)
	}

	var parseDiag bool
	for _, v := range violationsFor(rep, "apps/broken.py") {
		if v.RuleID == rules.ParseErrorID {
			parseDiag = true
		}
	}
	if !parseDiag {
		t.Error("broken.py should carry a parse diagnostic")
	}

	if got := violationsFor(rep, "apps/gen_models.py"); len(got) != 0 {
		t.Errorf("excluded file should contribute nothing, got %+v", got)
	}

	var missingTests bool
	for _, v := range violationsFor(rep, ".") {
		if v.RuleID == rules.RuleRequiredDir && v.Symbol == "tests" {
			missingTests = true
		}
	}
	if !missingTests {
		t.Error("expected a layout violation for the missing tests/ directory")
	}

	if rep.Summary.ExitCode != 1 {
		t.Errorf("errors present, expected exit code 1, got %d", rep.Summary.ExitCode)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := buildProject(t)

	render := func() []byte {
		a := New(root, testConfig(), logutil.NewDiscard(), "test")
		rep, err := a.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var buf bytes.Buffer
		if err := report.RenderJSON(&buf, rep); err != nil {
			t.Fatalf("render failed: %v", err)
		}
		return buf.Bytes()
	}

	first := render()
	second := render()
	if !bytes.Equal(first, second) {
		t.Error("two runs over unchanged input produced different JSON")
	}
}

func TestRunDisabledRule(t *testing.T) {
	root := buildProject(t)
	cfg := testConfig()
	off := false
	cfg.Rules = map[string]config.RuleSetting{
		rules.RuleMagicNumber: {Enabled: &off},
	}

	a := New(root, cfg, logutil.NewDiscard(), "test")
	rep, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range rep.Violations {
		if v.RuleID == rules.RuleMagicNumber {
			t.Fatalf("disabled rule still fired: %+v", v)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	root := buildProject(t)
	a := New(root, testConfig(), logutil.NewDiscard(), "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := a.Run(ctx)
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if rep != nil {
		t.Error("no partial report may escape a cancelled run")
	}
}

func TestRunUnreadableRoot(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "missing"), testConfig(), logutil.NewDiscard(), "test")
	if _, err := a.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a nonexistent root")
	}
}

func TestRunEmptyProject(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig()
	cfg.Layout.RequiredDirs = nil

	a := New(root, cfg, logutil.NewDiscard(), "test")
	rep, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Files != 0 || len(rep.Violations) != 0 || rep.Summary.ExitCode != 0 {
		t.Errorf("empty project should produce an empty passing report: %+v", rep)
	}
}
