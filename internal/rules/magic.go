package rules

import (
	"fmt"
	"strconv"
	"strings"

	"pyconform/internal/config"
	"pyconform/internal/facts"
)

// MagicNumberRule flags numeric literals used directly in comparisons,
// arithmetic expressions or default parameter values. 0, 1 and -1 are
// canonical loop/off-by-one idioms and stay exempt, as does the right-hand
// side of a constant's own definition.
type MagicNumberRule struct{}

func (MagicNumberRule) ID() string                { return RuleMagicNumber }
func (MagicNumberRule) DefaultSeverity() Severity { return SeverityError }

var exemptLiterals = map[string]bool{
	"0": true, "1": true, "-1": true,
}

func (r MagicNumberRule) Check(unit *facts.SourceUnit, cfg *config.Config) []Violation {
	var out []Violation
	for _, lit := range unit.Literals {
		if !lit.IsNumeric || lit.InConstantDef || exemptLiterals[lit.Raw] {
			continue
		}
		switch lit.Context {
		case facts.ContextComparison, facts.ContextArithmetic, facts.ContextDefault:
		default:
			continue
		}

		out = append(out, Violation{
			File:     unit.Path,
			Line:     lit.Line,
			Column:   lit.Col,
			Severity: r.DefaultSeverity(),
			RuleID:   r.ID(),
			Message:  magicMessage(lit, cfg),
		})
	}
	return out
}

func magicMessage(lit facts.Literal, cfg *config.Config) string {
	where := lit.Enclosing
	if where == "<module>" {
		where = "module scope"
	} else {
		where = fmt.Sprintf("function %q", where)
	}

	if lit.Context == facts.ContextComparison && looksLikeAttemptCounter(lit.ComparedTo) {
		if v, err := strconv.Atoi(lit.Raw); err == nil && v <= cfg.Thresholds.MaxAttemptsStyle {
			return fmt.Sprintf("magic number %s compared against %q in %s looks like a retry limit; bind it to a MAX_ATTEMPTS-style constant",
				lit.Raw, lit.ComparedTo, where)
		}
	}

	var use string
	switch lit.Context {
	case facts.ContextComparison:
		use = "a comparison"
	case facts.ContextArithmetic:
		use = "an arithmetic expression"
	case facts.ContextDefault:
		use = "a default parameter value"
	}
	return fmt.Sprintf("magic number %s used in %s in %s; bind it to a named constant", lit.Raw, use, where)
}

func looksLikeAttemptCounter(name string) bool {
	lower := strings.ToLower(name)
	return lower != "" &&
		(strings.Contains(lower, "attempt") ||
			strings.Contains(lower, "retry") ||
			strings.Contains(lower, "retries") ||
			strings.Contains(lower, "tries"))
}
