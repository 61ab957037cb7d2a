// Package report aggregates violations across files into the final run
// report: severity overrides and path exclusions applied, duplicates
// removed, ordering made deterministic, exit status computed.
package report

import (
	"path"
	"path/filepath"
	"sort"

	"pyconform/internal/config"
	"pyconform/internal/rules"
)

// Summary holds run-level counts. Exit code 1 means at least one
// error-severity entry; warnings alone never fail a run.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	ExitCode int `json:"exit_code"`
}

// Report is the ordered violation list plus summary. It contains no
// timestamps or random ids: identical input yields byte-identical output,
// which is what makes diff-based regression testing possible.
type Report struct {
	Tool       string            `json:"tool"`
	Version    string            `json:"version"`
	Root       string            `json:"root"`
	Files      int               `json:"files"`
	Violations []rules.Violation `json:"violations"`
	Summary    Summary           `json:"summary"`
}

// Build produces the final report from raw per-file violation lists, in
// whatever order the workers delivered them. files is the number of source
// files analyzed.
func Build(root, version string, files int, violations []rules.Violation, cfg *config.Config) *Report {
	kept := make([]rules.Violation, 0, len(violations))
	seen := make(map[violationKey]bool, len(violations))

	for _, v := range violations {
		if v.File != "." && ExcludedPath(v.File, cfg.ExcludePaths) {
			continue
		}
		if s, ok := cfg.SeverityOverride(v.RuleID); ok {
			if sev, valid := rules.ParseSeverity(s); valid {
				v.Severity = sev
			}
		}
		key := violationKey{v.File, v.Line, v.Column, v.RuleID, v.Message}
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, v)
	}

	sortViolations(kept)

	r := &Report{
		Tool:       "pyconform",
		Version:    version,
		Root:       filepath.ToSlash(root),
		Files:      files,
		Violations: kept,
	}
	for _, v := range kept {
		switch v.Severity {
		case rules.SeverityError:
			r.Summary.Errors++
		case rules.SeverityWarning:
			r.Summary.Warnings++
		case rules.SeverityInfo:
			r.Summary.Infos++
		}
	}
	if r.Summary.Errors > 0 {
		r.Summary.ExitCode = 1
	}
	return r
}

type violationKey struct {
	file    string
	line    int
	column  int
	ruleID  string
	message string
}

// sortViolations orders by file path, then line, then rule id, then column.
// The ordering is independent of worker scheduling, so output is stable.
func sortViolations(vs []rules.Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].File != vs[j].File {
			return vs[i].File < vs[j].File
		}
		if vs[i].Line != vs[j].Line {
			return vs[i].Line < vs[j].Line
		}
		if vs[i].RuleID != vs[j].RuleID {
			return vs[i].RuleID < vs[j].RuleID
		}
		if vs[i].Column != vs[j].Column {
			return vs[i].Column < vs[j].Column
		}
		return vs[i].Message < vs[j].Message
	})
}

// ExcludedPath reports whether a repo-relative path matches one of the
// exclusion globs. Patterns are matched against the full slash path and
// against the base name.
func ExcludedPath(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, pattern := range patterns {
		if m, _ := path.Match(pattern, rel); m {
			return true
		}
		if m, _ := path.Match(pattern, base); m {
			return true
		}
	}
	return false
}
