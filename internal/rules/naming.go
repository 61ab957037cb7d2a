package rules

import (
	"fmt"
	"regexp"
	"strings"

	"pyconform/internal/config"
	"pyconform/internal/facts"
)

var snakeCaseRe = regexp.MustCompile(`^_*[a-z][a-z0-9_]*_*$`)

// SnakeCaseRule flags function, parameter and variable identifiers that are
// not lower snake_case. UPPER_SNAKE_CASE constants, dunder names and method
// receivers are exempt.
type SnakeCaseRule struct{}

func (SnakeCaseRule) ID() string                { return RuleSnakeCase }
func (SnakeCaseRule) DefaultSeverity() Severity { return SeverityWarning }

func (r SnakeCaseRule) Check(unit *facts.SourceUnit, cfg *config.Config) []Violation {
	var out []Violation

	for _, fn := range unit.Functions {
		if fn.Dunder || isSnakeCase(fn.Name) {
			// dunder-style special names keep their form
		} else {
			out = append(out, Violation{
				File:     unit.Path,
				Line:     fn.Line,
				Column:   fn.Col,
				Severity: r.DefaultSeverity(),
				RuleID:   r.ID(),
				Message:  fmt.Sprintf("function name %q is not snake_case", fn.Name),
				Symbol:   fn.Name,
			})
		}
		for _, p := range fn.Params {
			if p.Receiver || p.Name == "" || isSnakeCase(p.Name) {
				continue
			}
			out = append(out, Violation{
				File:     unit.Path,
				Line:     fn.Line,
				Column:   fn.Col,
				Severity: r.DefaultSeverity(),
				RuleID:   r.ID(),
				Message:  fmt.Sprintf("parameter %q of %q is not snake_case", p.Name, fn.Name),
				Symbol:   p.Name,
			})
		}
	}

	for _, v := range unit.Variables {
		if v.IsConstant || isSnakeCase(v.Name) {
			continue
		}
		out = append(out, Violation{
			File:     unit.Path,
			Line:     v.Line,
			Column:   v.Col,
			Severity: r.DefaultSeverity(),
			RuleID:   r.ID(),
			Message:  fmt.Sprintf("variable name %q is neither snake_case nor an UPPER_SNAKE_CASE constant", v.Name),
			Symbol:   v.Name,
		})
	}

	return out
}

func isSnakeCase(name string) bool {
	if name != "" && strings.Trim(name, "_") == "" {
		return true // bare underscore throwaways
	}
	return snakeCaseRe.MatchString(name)
}

// VerbPrefixRule flags functions whose name does not start with a verb stem
// from the configured lexicon. Only plain-lowercase first tokens are judged;
// the lexicon fails open on anything else. Private helpers are demoted to
// info severity.
type VerbPrefixRule struct{}

func (VerbPrefixRule) ID() string                { return RuleVerbPrefix }
func (VerbPrefixRule) DefaultSeverity() Severity { return SeverityWarning }

func (r VerbPrefixRule) Check(unit *facts.SourceUnit, cfg *config.Config) []Violation {
	var out []Violation
	for _, fn := range unit.Functions {
		if fn.Dunder || fn.Verb != facts.VerbMissing {
			continue
		}
		sev := r.DefaultSeverity()
		if !fn.Public {
			sev = SeverityInfo
		}
		out = append(out, Violation{
			File:     unit.Path,
			Line:     fn.Line,
			Column:   fn.Col,
			Severity: sev,
			RuleID:   r.ID(),
			Message:  fmt.Sprintf("function name %q does not start with a known verb (extend the verb lexicon if %q is domain vocabulary)", fn.Name, firstNameToken(fn.Name)),
			Symbol:   fn.Name,
		})
	}
	return out
}

func firstNameToken(name string) string {
	trimmed := strings.TrimLeft(name, "_")
	if idx := strings.IndexByte(trimmed, '_'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

// GenericNameRule flags contentless variable names, but only in scopes large
// enough for the name to matter. Short scopes and comprehension bindings
// stay exempt.
type GenericNameRule struct{}

func (GenericNameRule) ID() string                { return RuleGenericName }
func (GenericNameRule) DefaultSeverity() Severity { return SeverityWarning }

func (r GenericNameRule) Check(unit *facts.SourceUnit, cfg *config.Config) []Violation {
	banned := make(map[string]bool, len(cfg.Lexicons.GenericNames))
	for _, n := range cfg.Lexicons.GenericNames {
		banned[n] = true
	}
	threshold := cfg.Thresholds.GenericNameScopeStatements

	var out []Violation
	for _, v := range unit.Variables {
		if !banned[v.Name] || v.ScopeStatements <= threshold {
			continue
		}
		out = append(out, Violation{
			File:     unit.Path,
			Line:     v.Line,
			Column:   v.Col,
			Severity: r.DefaultSeverity(),
			RuleID:   r.ID(),
			Message:  fmt.Sprintf("variable name %q says nothing in a scope of %d statements; name it after its content", v.Name, v.ScopeStatements),
			Symbol:   v.Name,
		})
	}
	return out
}
