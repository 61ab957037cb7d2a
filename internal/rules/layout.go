package rules

import (
	"fmt"
	"strings"

	"pyconform/internal/config"
	"pyconform/internal/facts"
)

// RequiredDirRule asserts that the configured required directories exist in
// the project tree snapshot. It runs once per run, after all per-file work,
// and is a structural assertion over a one-shot filesystem read.
type RequiredDirRule struct{}

func (RequiredDirRule) ID() string                { return RuleRequiredDir }
func (RequiredDirRule) DefaultSeverity() Severity { return SeverityError }

func (r RequiredDirRule) CheckTree(tree *facts.ProjectTree, cfg *config.Config) []Violation {
	var out []Violation
	for _, dir := range cfg.Layout.RequiredDirs {
		rel := strings.TrimSuffix(dir, "/")
		if rel == "" || tree.HasDir(rel) {
			continue
		}
		out = append(out, Violation{
			File:     ".",
			Line:     0,
			Severity: r.DefaultSeverity(),
			RuleID:   r.ID(),
			Message:  fmt.Sprintf("project is missing required directory %s/", rel),
			Symbol:   rel,
		})
	}
	return out
}
