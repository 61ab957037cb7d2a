package facts

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"pyconform/internal/pyparse"
)

var constantNameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// pythonStatementTypes are the node types counted when measuring how many
// statements a scope spans.
var pythonStatementTypes = map[string]bool{
	"expression_statement":  true,
	"return_statement":      true,
	"if_statement":          true,
	"for_statement":         true,
	"while_statement":       true,
	"try_statement":         true,
	"with_statement":        true,
	"assert_statement":      true,
	"raise_statement":       true,
	"pass_statement":        true,
	"break_statement":       true,
	"continue_statement":    true,
	"import_statement":      true,
	"import_from_statement": true,
	"delete_statement":      true,
	"global_statement":      true,
	"nonlocal_statement":    true,
	"match_statement":       true,
}

// Classifier extracts typed facts from parsed Python trees.
type Classifier struct {
	verbStems []string
}

// NewClassifier creates a classifier using the given verb-stem lexicon.
// Stems carry the trailing underscore ("update_") and match case-sensitively.
func NewClassifier(verbStems []string) *Classifier {
	return &Classifier{verbStems: verbStems}
}

// Classify walks the tree and produces the SourceUnit for one file.
// Node types the classifier does not model (decorators, comments, strings)
// are treated as opaque leaves.
func (c *Classifier) Classify(path string, source []byte, root *sitter.Node) *SourceUnit {
	unit := &SourceUnit{Path: path, Source: source}
	if root == nil {
		return unit
	}

	scopeCounts := map[*sitter.Node]int{}

	for _, fn := range findNodes(root, "function_definition") {
		unit.Functions = append(unit.Functions, c.classifyFunction(fn, source))
	}
	for _, assign := range findNodes(root, "assignment") {
		if v, ok := classifyAssignment(assign, root, source, scopeCounts); ok {
			unit.Variables = append(unit.Variables, v)
		}
	}
	for _, lit := range findNodes(root, "integer", "float") {
		unit.Literals = append(unit.Literals, classifyNumericLiteral(lit, source))
	}
	for _, lit := range findNodes(root, "string") {
		unit.Literals = append(unit.Literals, Literal{
			Raw:       pyparse.NodeText(lit, source),
			IsNumeric: false,
			Line:      int(lit.StartPoint().Row) + 1,
			Col:       int(lit.StartPoint().Column) + 1,
			Context:   ContextOther,
			Enclosing: enclosingFunction(lit, source),
		})
	}

	return unit
}

func (c *Classifier) classifyFunction(node *sitter.Node, source []byte) Function {
	name := pyparse.NodeText(node.ChildByFieldName("name"), source)
	isMethod := isMethodDefinition(node)

	fn := Function{
		Name:                name,
		Line:                int(node.StartPoint().Row) + 1,
		Col:                 int(node.StartPoint().Column) + 1,
		IsMethod:            isMethod,
		HasReturnAnnotation: node.ChildByFieldName("return_type") != nil,
		Public:              !strings.HasPrefix(name, "_"),
		Dunder:              isDunder(name),
		Verb:                c.matchVerb(name),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Params = classifyParams(params, source, isMethod)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		fn.BodyStatements = countStatements(body)
	}
	return fn
}

func classifyParams(params *sitter.Node, source []byte, isMethod bool) []Param {
	var out []Param
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child == nil {
			continue
		}

		var p Param
		switch child.Type() {
		case "identifier":
			p = Param{Name: pyparse.NodeText(child, source)}
		case "typed_parameter":
			p = Param{Name: paramInnerName(child, source), Annotated: true}
		case "default_parameter":
			p = Param{Name: pyparse.NodeText(child.ChildByFieldName("name"), source)}
		case "typed_default_parameter":
			p = Param{Name: pyparse.NodeText(child.ChildByFieldName("name"), source), Annotated: true}
		case "list_splat_pattern", "dictionary_splat_pattern":
			p = Param{Name: paramInnerName(child, source), Splat: true}
		default:
			// keyword/positional separators and anything newer in the grammar
			continue
		}

		if isMethod && len(out) == 0 && (p.Name == "self" || p.Name == "cls") {
			p.Receiver = true
		}
		out = append(out, p)
	}
	return out
}

// paramInnerName digs the identifier out of wrapped parameter forms.
func paramInnerName(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Type() == "identifier" {
			return pyparse.NodeText(child, source)
		}
	}
	return pyparse.NodeText(node, source)
}

func classifyAssignment(node, root *sitter.Node, source []byte, scopeCounts map[*sitter.Node]int) (Variable, bool) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		// Tuple, attribute and subscript targets are not simple variables.
		return Variable{}, false
	}

	name := pyparse.NodeText(left, source)
	scope, scopeNode := enclosingScope(node, root)

	count, ok := scopeCounts[scopeNode]
	if !ok {
		count = countStatements(scopeBody(scopeNode))
		scopeCounts[scopeNode] = count
	}

	return Variable{
		Name:            name,
		Line:            int(left.StartPoint().Row) + 1,
		Col:             int(left.StartPoint().Column) + 1,
		IsConstant:      constantNameRe.MatchString(name),
		Annotated:       node.ChildByFieldName("type") != nil,
		Scope:           scope,
		Enclosing:       enclosingFunction(node, source),
		ScopeStatements: count,
	}, true
}

func classifyNumericLiteral(node *sitter.Node, source []byte) Literal {
	raw := pyparse.NodeText(node, source)

	// A literal under a unary minus is treated as one negative value so that
	// -1 hits the canonical exemption.
	if parent := node.Parent(); parent != nil && parent.Type() == "unary_operator" {
		if op := parent.ChildByFieldName("operator"); op != nil && pyparse.NodeText(op, source) == "-" {
			raw = "-" + raw
		}
	}

	lit := Literal{
		Raw:       raw,
		IsNumeric: true,
		Line:      int(node.StartPoint().Row) + 1,
		Col:       int(node.StartPoint().Column) + 1,
		Enclosing: enclosingFunction(node, source),
	}
	lit.Context, lit.ComparedTo = literalContext(node, source)
	lit.InConstantDef = isConstantDefinitionSite(node, source)
	return lit
}

// literalContext climbs the ancestor chain to find the syntactic use of a
// literal. Only comparisons, arithmetic and default parameter values are
// magic-number candidates; everything else is ContextOther.
func literalContext(node *sitter.Node, source []byte) (LiteralContext, string) {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "comparison_operator":
			return ContextComparison, comparisonCounterpart(cur, node, source)
		case "binary_operator", "augmented_assignment":
			return ContextArithmetic, ""
		case "default_parameter", "typed_default_parameter":
			return ContextDefault, ""
		case "unary_operator", "parenthesized_expression":
			continue
		default:
			return ContextOther, ""
		}
	}
	return ContextOther, ""
}

// comparisonCounterpart returns the first identifier operand of a comparison
// other than the literal itself, used for retry-style messages.
func comparisonCounterpart(cmp, literal *sitter.Node, source []byte) string {
	for i := 0; i < int(cmp.NamedChildCount()); i++ {
		child := cmp.NamedChild(i)
		if child == nil || child.Equal(literal) {
			continue
		}
		if child.Type() == "identifier" || child.Type() == "attribute" {
			return pyparse.NodeText(child, source)
		}
	}
	return ""
}

// isConstantDefinitionSite reports whether the literal sits on the right-hand
// side of an UPPER_SNAKE_CASE assignment at module or class level.
func isConstantDefinitionSite(node *sitter.Node, source []byte) bool {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Type() == "function_definition" {
			return false
		}
		if cur.Type() != "assignment" {
			continue
		}
		left := cur.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			return false
		}
		return constantNameRe.MatchString(pyparse.NodeText(left, source))
	}
	return false
}

// matchVerb implements the verb-stem lexicon check. The lexicon fails open:
// names whose first token is not plain lowercase are VerbUnknown rather
// than VerbMissing, so domain names broken in other ways are not
// double-reported here.
func (c *Classifier) matchVerb(name string) VerbMatch {
	trimmed := strings.TrimLeft(name, "_")
	if trimmed == "" {
		return VerbUnknown
	}
	for _, stem := range c.verbStems {
		if strings.HasPrefix(trimmed, stem) {
			return VerbKnown
		}
	}

	first := trimmed
	if idx := strings.IndexByte(trimmed, '_'); idx >= 0 {
		first = trimmed[:idx]
	}
	for _, r := range first {
		if r < 'a' || r > 'z' {
			return VerbUnknown
		}
	}
	return VerbMissing
}

func isDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// isMethodDefinition reports whether a function_definition sits directly in
// a class body, including the decorated form.
func isMethodDefinition(node *sitter.Node) bool {
	parent := node.Parent()
	if parent != nil && parent.Type() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Type() != "block" {
		return false
	}
	grand := parent.Parent()
	return grand != nil && grand.Type() == "class_definition"
}

// enclosingScope finds the nearest enclosing scope of a node: a function
// body, a class body, or the module.
func enclosingScope(node, root *sitter.Node) (ScopeKind, *sitter.Node) {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Type() {
		case "function_definition":
			return ScopeFunction, cur
		case "class_definition":
			return ScopeClass, cur
		}
	}
	return ScopeModule, root
}

func enclosingFunction(node *sitter.Node, source []byte) string {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Type() == "function_definition" {
			return pyparse.NodeText(cur.ChildByFieldName("name"), source)
		}
	}
	return "<module>"
}

// scopeBody returns the block whose statements should be counted for a scope.
func scopeBody(scope *sitter.Node) *sitter.Node {
	if scope == nil {
		return nil
	}
	if body := scope.ChildByFieldName("body"); body != nil {
		return body
	}
	return scope
}

// countStatements counts Python statement nodes within a subtree.
func countStatements(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if pythonStatementTypes[n.Type()] {
			count++
		}
		for i := uint32(0); i < n.ChildCount(); i++ {
			walk(n.Child(int(i)))
		}
	}
	walk(node)
	return count
}

// findNodes collects all nodes of the given types, in document order.
func findNodes(root *sitter.Node, types ...string) []*sitter.Node {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	var result []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if want[node.Type()] {
			result = append(result, node)
		}
		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}
	walk(root)
	return result
}
