package rules

import (
	"fmt"
	"strings"

	"pyconform/internal/config"
	"pyconform/internal/facts"
)

// MissingHintRule flags functions with unannotated parameters or a missing
// return annotation, and module/class-level assignments without an
// annotation. The checker detects absence only; it never judges whether an
// annotation is correct. Scope is limited to the public API surface when
// typing.publicOnly is set.
type MissingHintRule struct{}

func (MissingHintRule) ID() string                { return RuleMissingHint }
func (MissingHintRule) DefaultSeverity() Severity { return SeverityWarning }

func (r MissingHintRule) Check(unit *facts.SourceUnit, cfg *config.Config) []Violation {
	var out []Violation

	for _, fn := range unit.Functions {
		if cfg.Typing.PublicOnly && !fn.Public {
			continue
		}

		var missing []string
		for _, p := range fn.Params {
			if p.Receiver || p.Splat || p.Annotated {
				continue
			}
			missing = append(missing, p.Name)
		}
		needsReturn := !fn.HasReturnAnnotation

		if len(missing) == 0 && !needsReturn {
			continue
		}
		out = append(out, Violation{
			File:     unit.Path,
			Line:     fn.Line,
			Column:   fn.Col,
			Severity: r.DefaultSeverity(),
			RuleID:   r.ID(),
			Message:  hintMessage(fn.Name, missing, needsReturn),
			Symbol:   fn.Name,
		})
	}

	for _, v := range unit.Variables {
		if v.Scope == facts.ScopeFunction || v.Annotated {
			continue
		}
		if cfg.Typing.PublicOnly && strings.HasPrefix(v.Name, "_") {
			continue
		}
		out = append(out, Violation{
			File:     unit.Path,
			Line:     v.Line,
			Column:   v.Col,
			Severity: r.DefaultSeverity(),
			RuleID:   r.ID(),
			Message:  fmt.Sprintf("%s-level variable %q has no type annotation", v.Scope, v.Name),
			Symbol:   v.Name,
		})
	}

	return out
}

func hintMessage(name string, missingParams []string, needsReturn bool) string {
	switch {
	case len(missingParams) > 0 && needsReturn:
		return fmt.Sprintf("function %q: parameter(s) %s and the return value lack type annotations",
			name, strings.Join(missingParams, ", "))
	case len(missingParams) > 0:
		return fmt.Sprintf("function %q: parameter(s) %s lack type annotations",
			name, strings.Join(missingParams, ", "))
	default:
		return fmt.Sprintf("function %q has no return annotation", name)
	}
}
