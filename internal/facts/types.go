// Package facts converts parsed Python trees into typed facts about the
// symbols they declare. Rules consume these facts; nothing here decides
// whether anything is a violation.
package facts

// VerbMatch classifies whether a function name starts with a known verb stem.
type VerbMatch string

const (
	// VerbKnown means a configured verb stem prefixes the name.
	VerbKnown VerbMatch = "known"
	// VerbMissing means the first name token is plain lowercase and no stem matched.
	VerbMissing VerbMatch = "missing"
	// VerbUnknown means the name's first token is not a verb-stem candidate
	// (mixed case, digits). The lexicon fails open for these.
	VerbUnknown VerbMatch = "unknown"
)

// ScopeKind identifies where a variable assignment lives.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeClass    ScopeKind = "class"
	ScopeFunction ScopeKind = "function"
)

// LiteralContext identifies the syntactic use of a literal.
type LiteralContext string

const (
	ContextComparison LiteralContext = "comparison"
	ContextArithmetic LiteralContext = "arithmetic"
	ContextDefault    LiteralContext = "default"
	ContextOther      LiteralContext = "other"
)

// Param is one function parameter.
type Param struct {
	Name      string
	Annotated bool
	Receiver  bool // self/cls binding of a method
	Splat     bool // *args / **kwargs
}

// Function is a classified function or method definition.
type Function struct {
	Name                string
	Line                int
	Col                 int
	IsMethod            bool
	Params              []Param
	HasReturnAnnotation bool
	BodyStatements      int
	Public              bool
	Dunder              bool
	Verb                VerbMatch
}

// Variable is a classified simple assignment target.
type Variable struct {
	Name            string
	Line            int
	Col             int
	IsConstant      bool // UPPER_SNAKE_CASE form
	Annotated       bool
	Scope           ScopeKind
	Enclosing       string // function name, or "<module>"
	ScopeStatements int    // statements spanned by the enclosing scope
}

// Literal is a numeric or string literal with its syntactic context.
type Literal struct {
	Raw           string
	IsNumeric     bool
	Line          int
	Col           int
	Context       LiteralContext
	Enclosing     string // function name, or "<module>"
	InConstantDef bool   // RHS of an UPPER_SNAKE_CASE assignment
	ComparedTo    string // identifier on the other side of a comparison
}

// SourceUnit is one analyzed file: path, raw text, and classified facts.
// It is built once per file and never mutated afterwards.
type SourceUnit struct {
	Path      string
	Source    []byte
	Functions []Function
	Variables []Variable
	Literals  []Literal
}

// ProjectTree is a one-shot snapshot of the directory layout, consumed by
// layout rules after all per-file analysis completes.
type ProjectTree struct {
	Root string
	Dirs map[string]bool // repo-relative, forward slashes
}

// HasDir reports whether the snapshot contains the given relative directory.
func (t *ProjectTree) HasDir(rel string) bool {
	return t.Dirs[rel]
}
