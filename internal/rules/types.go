// Package rules implements the convention checks. Each rule is a stateless
// value evaluated independently over the classified facts of one file (or,
// for layout rules, over the project tree snapshot). Rules never observe
// another rule's output, so they can be enabled and disabled arbitrarily
// without changing each other's results.
package rules

import (
	"fmt"

	"pyconform/internal/config"
	"pyconform/internal/facts"
)

// Severity indicates how a violation affects the run outcome.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Weight returns a numeric weight for severity comparisons.
func (s Severity) Weight() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity maps a config string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return "", false
	}
}

// Stable rule identifiers.
const (
	RuleSnakeCase   = "naming.snake_case"
	RuleVerbPrefix  = "naming.verb_prefix"
	RuleGenericName = "naming.generic_name"
	RuleMagicNumber = "magic-number.undeclared"
	RuleMissingHint = "typing.missing-hint"
	RuleRequiredDir = "layout.required-dir"

	// ParseErrorID is the diagnostic id for unreadable or unparseable files.
	// It is emitted by the analyzer rather than a registered rule.
	ParseErrorID = "parse.error"
)

// Violation is a single reported deviation. Produced once, never mutated.
type Violation struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Symbol   string   `json:"symbol,omitempty"`
}

// Rule is a per-file check over classified facts.
type Rule interface {
	ID() string
	DefaultSeverity() Severity
	Check(unit *facts.SourceUnit, cfg *config.Config) []Violation
}

// LayoutRule is evaluated once per run over the project tree snapshot.
type LayoutRule interface {
	ID() string
	DefaultSeverity() Severity
	CheckTree(tree *facts.ProjectTree, cfg *config.Config) []Violation
}

// NewParseDiagnostic converts a per-file parse or read failure into the
// single report entry that stands in for the file's analysis.
func NewParseDiagnostic(file string, line int, msg string) Violation {
	if line < 1 {
		line = 1
	}
	return Violation{
		File:     file,
		Line:     line,
		Severity: SeverityError,
		RuleID:   ParseErrorID,
		Message:  msg,
	}
}

// Registry holds the built-in rules.
type Registry struct {
	fileRules   []Rule
	layoutRules []LayoutRule
}

// NewRegistry creates a registry with all built-in rules. It panics when a
// registered rule lacks metadata, which is a programming error caught by the
// package tests.
func NewRegistry() *Registry {
	r := &Registry{
		fileRules: []Rule{
			SnakeCaseRule{},
			VerbPrefixRule{},
			GenericNameRule{},
			MagicNumberRule{},
			MissingHintRule{},
		},
		layoutRules: []LayoutRule{
			RequiredDirRule{},
		},
	}
	for _, id := range r.AllIDs() {
		if _, ok := MetadataFor(id); !ok {
			panic(fmt.Sprintf("rule %s has no metadata", id))
		}
	}
	return r
}

// FileRules returns the per-file rules.
func (r *Registry) FileRules() []Rule {
	return r.fileRules
}

// LayoutRules returns the whole-tree rules.
func (r *Registry) LayoutRules() []LayoutRule {
	return r.layoutRules
}

// AllIDs returns every id the checker can emit, including the parse
// diagnostic. Config validation rejects overrides for anything else.
func (r *Registry) AllIDs() []string {
	ids := make([]string, 0, len(r.fileRules)+len(r.layoutRules)+1)
	for _, rule := range r.fileRules {
		ids = append(ids, rule.ID())
	}
	for _, rule := range r.layoutRules {
		ids = append(ids, rule.ID())
	}
	ids = append(ids, ParseErrorID)
	return ids
}
