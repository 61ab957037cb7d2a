// Package pyparse wraps tree-sitter for parsing Python source files.
//
// The parser is tolerant: syntactically broken files still produce a tree
// with ERROR/MISSING nodes, so downstream classification can proceed on the
// healthy parts while the run records a single diagnostic for the file.
package pyparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps a tree-sitter parser configured for the Python grammar.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Python parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source text and returns the AST root node. Failures come
// back as *ParseError carrying the file path.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{File: path, Line: 1, Message: err.Error()}
	}
	return tree.RootNode(), nil
}

// ParseError describes a failure to read or parse one source file.
// It isolates the file: the run continues and the failure degrades into a
// single diagnostic entry in the report.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// FirstSyntaxError returns the position of the first ERROR or MISSING node
// in the tree, or ok=false when the tree is clean.
func FirstSyntaxError(root *sitter.Node) (line, col int, ok bool) {
	if root == nil {
		return 0, 0, false
	}

	var found *sitter.Node
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil || found != nil {
			return
		}
		if node.Type() == "ERROR" || node.IsMissing() {
			found = node
			return
		}
		// Subtrees without errors are skipped wholesale.
		if !node.HasError() {
			return
		}
		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}
	walk(root)

	if found == nil {
		return 0, 0, false
	}
	return int(found.StartPoint().Row) + 1, int(found.StartPoint().Column) + 1, true
}

// NodeText returns the source text spanned by a node.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
