// Package analyzer orchestrates a run: file discovery, the parallel
// per-file pipeline (parse, classify, evaluate rules), the one-shot layout
// pass and final aggregation.
//
// Per-file analysis is embarrassingly parallel: a SourceUnit is owned by
// exactly one worker and no file's analysis touches another file's state.
// Completed per-file results fan in over a single channel, the only shared
// point of the run.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"pyconform/internal/config"
	"pyconform/internal/facts"
	"pyconform/internal/pyparse"
	"pyconform/internal/report"
	"pyconform/internal/rules"
	"pyconform/internal/storage"
)

// skipDirs are directory names never descended into. Their presence is
// still recorded for layout rules.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".pyconform":   true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
}

// Analyzer runs the full pipeline for one project root.
type Analyzer struct {
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	registry *rules.Registry
	cache    *storage.Cache
	version  string
}

// New creates an analyzer for a project root.
func New(root string, cfg *config.Config, logger *slog.Logger, version string) *Analyzer {
	return &Analyzer{
		root:     root,
		cfg:      cfg,
		logger:   logger,
		registry: rules.NewRegistry(),
		version:  version,
	}
}

// Registry exposes the rule registry, e.g. for config validation.
func (a *Analyzer) Registry() *rules.Registry {
	return a.registry
}

// SetCache attaches a per-file result cache. Without one, every file is
// analyzed from scratch.
func (a *Analyzer) SetCache(c *storage.Cache) {
	a.cache = c
}

// Run analyzes the project and returns the aggregated report. Per-file
// failures degrade to parse.error diagnostics inside the report; only an
// unreadable root or cancellation fail the run itself, in which case no
// partial report is emitted.
func (a *Analyzer) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()

	files, tree, err := a.discover()
	if err != nil {
		return nil, err
	}

	workers := a.cfg.Analysis.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(files) > 0 && workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	configHash := a.configFingerprint()

	jobs := make(chan string)
	results := make(chan []rules.Violation)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// tree-sitter parsers are not safe for concurrent use, so each
			// worker owns one.
			parser := pyparse.NewParser()
			classifier := facts.NewClassifier(a.cfg.Lexicons.VerbPrefixes)
			for rel := range jobs {
				results <- a.analyzeFile(ctx, parser, classifier, rel, configHash)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Cancellation stops scheduling; in-flight analyses drain below and are
	// discarded with the rest of the run.
	go func() {
		defer close(jobs)
		for _, rel := range files {
			select {
			case jobs <- rel:
			case <-ctx.Done():
				return
			}
		}
	}()

	var all []rules.Violation
	for vs := range results {
		all = append(all, vs...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Layout rules need the full directory listing, not parsed content, so
	// they run once after the pool drains.
	for _, rule := range a.registry.LayoutRules() {
		if !a.cfg.RuleEnabled(rule.ID()) {
			continue
		}
		all = append(all, rule.CheckTree(tree, a.cfg)...)
	}

	rep := report.Build(a.root, a.version, len(files), all, a.cfg)

	a.logger.Info("analysis complete",
		"files", len(files),
		"violations", len(rep.Violations),
		"errors", rep.Summary.Errors,
		"warnings", rep.Summary.Warnings,
		"duration", time.Since(start).String(),
	)
	return rep, nil
}

// analyzeFile carries one file end-to-end: read once, parse, classify,
// evaluate every enabled per-file rule. Failures never escape; they become
// the file's single diagnostic entry.
func (a *Analyzer) analyzeFile(ctx context.Context, parser *pyparse.Parser, classifier *facts.Classifier, rel, configHash string) []rules.Violation {
	source, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(rel)))
	if err != nil {
		a.logger.Warn("cannot read file", "file", rel, "error", err)
		return []rules.Violation{rules.NewParseDiagnostic(rel, 1, fmt.Sprintf("cannot read file: %v", err))}
	}

	contentHash := storage.HashContent(source)
	if a.cache != nil {
		if cached, ok, cerr := a.cache.Get(rel, contentHash, configHash, a.version); cerr != nil {
			a.logger.Warn("cache lookup failed", "file", rel, "error", cerr)
		} else if ok {
			a.logger.Debug("cache hit", "file", rel)
			return cached
		}
	}

	root, err := parser.Parse(ctx, rel, source)
	if err != nil {
		return []rules.Violation{rules.NewParseDiagnostic(rel, 1, fmt.Sprintf("cannot parse file: %v", err))}
	}

	var violations []rules.Violation
	if line, col, bad := pyparse.FirstSyntaxError(root); bad {
		v := rules.NewParseDiagnostic(rel, line, "file contains a syntax error; analysis covers the parseable parts only")
		v.Column = col
		violations = append(violations, v)
	}

	unit := classifier.Classify(rel, source, root)
	for _, rule := range a.registry.FileRules() {
		if !a.cfg.RuleEnabled(rule.ID()) {
			continue
		}
		violations = append(violations, rule.Check(unit, a.cfg)...)
	}

	if a.cache != nil {
		if cerr := a.cache.Put(rel, contentHash, configHash, a.version, violations); cerr != nil {
			a.logger.Warn("cache write failed", "file", rel, "error", cerr)
		}
	}
	return violations
}

// discover walks the root once, collecting Python files to analyze and the
// directory snapshot for layout rules. The file list is sorted so work
// scheduling is reproducible.
func (a *Analyzer) discover() ([]string, *facts.ProjectTree, error) {
	info, err := os.Stat(a.root)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read root path %s: %w", a.root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root path %s is not a directory", a.root)
	}

	tree := &facts.ProjectTree{Root: a.root, Dirs: map[string]bool{}}
	var files []string

	walkErr := filepath.Walk(a.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		rel, rerr := filepath.Rel(a.root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel == "." {
				return nil
			}
			tree.Dirs[rel] = true
			if skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(info.Name(), ".py") {
			return nil
		}
		if report.ExcludedPath(rel, a.cfg.ExcludePaths) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", a.root, walkErr)
	}

	sort.Strings(files)
	return files, tree, nil
}

// configFingerprint hashes the effective config so cached results are
// invalidated by any configuration change.
func (a *Analyzer) configFingerprint() string {
	data, err := json.Marshal(a.cfg)
	if err != nil {
		return "unhashable"
	}
	return storage.HashContent(data)
}
