//go:build cgo

package facts

import (
	"context"
	"testing"

	"pyconform/internal/pyparse"
)

var testVerbStems = []string{
	"build_", "check_", "get_", "is_", "load_", "process_", "update_",
}

func classify(t *testing.T, source string) *SourceUnit {
	t.Helper()
	p := pyparse.NewParser()
	root, err := p.Parse(context.Background(), "test.py", []byte(source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	c := NewClassifier(testVerbStems)
	return c.Classify("test.py", []byte(source), root)
}

func findFunc(t *testing.T, unit *SourceUnit, name string) Function {
	t.Helper()
	for _, fn := range unit.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %s not found", name)
	return Function{}
}

func findVar(t *testing.T, unit *SourceUnit, name string) Variable {
	t.Helper()
	for _, v := range unit.Variables {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("variable %s not found", name)
	return Variable{}
}

func TestClassifyFunctions(t *testing.T) {
	unit := classify(t, `def process_payment(amount: float, retries=3, *args, **kwargs) -> bool:
    return amount > 0

def _helper(x):
    pass

def __init__(self):
    pass

class Account:
    def get_balance(self) -> float:
        return self.balance
`)

	if len(unit.Functions) != 4 {
		t.Fatalf("expected 4 functions, got %d", len(unit.Functions))
	}

	pay := findFunc(t, unit, "process_payment")
	if pay.Line != 1 {
		t.Errorf("process_payment: expected line 1, got %d", pay.Line)
	}
	if !pay.Public {
		t.Error("process_payment should be public")
	}
	if pay.Verb != VerbKnown {
		t.Errorf("process_payment: expected VerbKnown, got %s", pay.Verb)
	}
	if !pay.HasReturnAnnotation {
		t.Error("process_payment should have a return annotation")
	}
	if len(pay.Params) != 4 {
		t.Fatalf("process_payment: expected 4 params, got %d", len(pay.Params))
	}
	if !pay.Params[0].Annotated {
		t.Error("amount should be annotated")
	}
	if pay.Params[1].Annotated {
		t.Error("retries has a default but no annotation")
	}
	if !pay.Params[2].Splat || !pay.Params[3].Splat {
		t.Error("*args and **kwargs should be splats")
	}

	helper := findFunc(t, unit, "_helper")
	if helper.Public {
		t.Error("_helper should be private")
	}
	if helper.HasReturnAnnotation {
		t.Error("_helper has no return annotation")
	}

	init := findFunc(t, unit, "__init__")
	if !init.Dunder {
		t.Error("__init__ should be a dunder")
	}

	bal := findFunc(t, unit, "get_balance")
	if !bal.IsMethod {
		t.Error("get_balance should be a method")
	}
	if len(bal.Params) != 1 || !bal.Params[0].Receiver {
		t.Error("self should be classified as the receiver")
	}
}

func TestClassifyDecoratedMethod(t *testing.T) {
	unit := classify(t, `class Box:
    @property
    def value(self) -> int:
        return self._value
`)

	fn := findFunc(t, unit, "value")
	if !fn.IsMethod {
		t.Error("decorated method should still be classified as a method")
	}
	if len(fn.Params) != 1 || !fn.Params[0].Receiver {
		t.Error("self should be the receiver of a decorated method")
	}
}

func TestMatchVerb(t *testing.T) {
	c := NewClassifier(testVerbStems)

	tests := []struct {
		name string
		want VerbMatch
	}{
		{"update_record", VerbKnown},
		{"is_valid", VerbKnown},
		{"_check_input", VerbKnown},
		{"payment", VerbMissing},
		{"total_sum", VerbMissing},
		{"Update", VerbUnknown},
		{"fetch2", VerbUnknown},
		{"__", VerbUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.matchVerb(tt.name); got != tt.want {
				t.Errorf("matchVerb(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassifyVariables(t *testing.T) {
	unit := classify(t, `MAX_ATTEMPTS: int = 3
timeout = 30

class Config:
    retries = 5

def load_settings():
    path = "settings.json"
    count = 0
    return path, count
`)

	maxA := findVar(t, unit, "MAX_ATTEMPTS")
	if !maxA.IsConstant {
		t.Error("MAX_ATTEMPTS should be classified as a constant")
	}
	if !maxA.Annotated {
		t.Error("MAX_ATTEMPTS is annotated")
	}
	if maxA.Scope != ScopeModule {
		t.Errorf("MAX_ATTEMPTS: expected module scope, got %s", maxA.Scope)
	}

	timeout := findVar(t, unit, "timeout")
	if timeout.IsConstant || timeout.Annotated {
		t.Error("timeout is a plain unannotated module variable")
	}

	retries := findVar(t, unit, "retries")
	if retries.Scope != ScopeClass {
		t.Errorf("retries: expected class scope, got %s", retries.Scope)
	}

	path := findVar(t, unit, "path")
	if path.Scope != ScopeFunction {
		t.Errorf("path: expected function scope, got %s", path.Scope)
	}
	if path.Enclosing != "load_settings" {
		t.Errorf("path: expected enclosing load_settings, got %s", path.Enclosing)
	}
}

func TestClassifyIgnoresCompoundTargets(t *testing.T) {
	unit := classify(t, `a, b = 1, 2
obj.field = 3
items[0] = 4
`)

	if len(unit.Variables) != 0 {
		t.Errorf("tuple/attribute/subscript targets should not classify as variables, got %d", len(unit.Variables))
	}
}

func TestScopeStatements(t *testing.T) {
	unit := classify(t, `def build_report(items: list) -> int:
    data = items
    total = 0
    count = 0
    for item in data:
        total += 1
        count += 1
    return total
`)

	data := findVar(t, unit, "data")
	if data.ScopeStatements <= 5 {
		t.Errorf("expected more than 5 statements in scope, got %d", data.ScopeStatements)
	}
}

func TestClassifyNumericLiterals(t *testing.T) {
	unit := classify(t, `MAX_RETRIES = 3

def check_limit(attempts, factor=2.5):
    if attempts > 3:
        return -1
    return attempts * 60
`)

	var constDef, comparison, negOne, arithmetic, defaultVal *Literal
	for i := range unit.Literals {
		lit := &unit.Literals[i]
		switch {
		case lit.Raw == "3" && lit.Line == 1:
			constDef = lit
		case lit.Raw == "3" && lit.Context == ContextComparison:
			comparison = lit
		case lit.Raw == "-1":
			negOne = lit
		case lit.Raw == "60":
			arithmetic = lit
		case lit.Raw == "2.5":
			defaultVal = lit
		}
	}

	if constDef == nil || !constDef.InConstantDef {
		t.Error("the 3 in MAX_RETRIES = 3 should be a constant definition site")
	}
	if comparison == nil {
		t.Fatal("the 3 in the comparison was not classified")
	}
	if comparison.ComparedTo != "attempts" {
		t.Errorf("expected ComparedTo attempts, got %q", comparison.ComparedTo)
	}
	if comparison.Enclosing != "check_limit" {
		t.Errorf("expected enclosing check_limit, got %q", comparison.Enclosing)
	}
	if negOne == nil {
		t.Fatal("-1 was not folded into one literal")
	}
	if arithmetic == nil || arithmetic.Context != ContextArithmetic {
		t.Error("the 60 in attempts * 60 should have arithmetic context")
	}
	if defaultVal == nil || defaultVal.Context != ContextDefault {
		t.Error("the 2.5 default should have default context")
	}
}

func TestClassifyStringLiterals(t *testing.T) {
	unit := classify(t, `greeting = "hello"
`)

	var found bool
	for _, lit := range unit.Literals {
		if lit.Raw == `"hello"` && !lit.IsNumeric {
			found = true
		}
	}
	if !found {
		t.Error("string literal not classified")
	}
}

func TestClassifyNilRoot(t *testing.T) {
	c := NewClassifier(nil)
	unit := c.Classify("test.py", nil, nil)
	if unit == nil || unit.Path != "test.py" {
		t.Fatal("expected an empty unit for a nil tree")
	}
	if len(unit.Functions)+len(unit.Variables)+len(unit.Literals) != 0 {
		t.Error("expected no facts from a nil tree")
	}
}
