// Package parser provides tree-sitter based parsing of Python source units.
//
// The parser package wraps the tree-sitter library behind a Unit abstraction:
// an ordered sequence of top-level statements with support for structural
// dumps, which the diff engine uses for exact-match checks.
package parser

import (
	"context"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser wraps a tree-sitter parser configured for Python.
type Parser struct {
	parser *sitter.Parser
}

// Unit is a parsed source module (or an equivalent top-level body).
type Unit struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the original source code that was parsed.
	Source []byte
	// FilePath is the path to the source file (empty for in-memory parsing).
	FilePath string
}

// New creates a Python parser.
func New() *Parser {
	return &Parser{parser: newPythonParser()}
}

// Parse parses source code and returns the parsed unit.
// Returns a ParseError if the source contains syntax errors.
func (p *Parser) Parse(source []byte) (*Unit, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstErrorLocation(root)
		tree.Close()
		return nil, &ParseError{
			Message: "syntax error",
			Line:    line,
			Column:  col,
		}
	}

	return &Unit{
		Tree:   tree,
		Root:   root,
		Source: source,
	}, nil
}

// ParseFile parses a file from disk.
func (p *Parser) ParseFile(path string) (*Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	unit, err := p.Parse(source)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}

	unit.FilePath = path
	return unit, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (u *Unit) Close() {
	if u.Tree != nil {
		u.Tree.Close()
		u.Tree = nil
		u.Root = nil
	}
}

// Statements returns the ordered top-level statements of the unit, with
// comments skipped.
func (u *Unit) Statements() []*sitter.Node {
	return BlockStatements(u.Root)
}

// Content returns the source text covered by a node.
func (u *Unit) Content(n *sitter.Node) string {
	return n.Content(u.Source)
}

// BlockStatements returns the named statement children of a module or block
// node, with comments skipped.
func BlockStatements(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var stmts []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// Walk traverses the subtree rooted at n depth-first, calling the visitor
// for each node. If the visitor returns false for a node, its children are
// not visited.
func Walk(n *sitter.Node, visitor func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), visitor)
	}
}

// firstErrorLocation finds the location of the first ERROR or missing node.
func firstErrorLocation(root *sitter.Node) (uint32, uint32) {
	var line, col uint32
	found := false
	Walk(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.IsError() || n.IsMissing() {
			line = n.StartPoint().Row + 1
			col = n.StartPoint().Column
			found = true
			return false
		}
		return true
	})
	return line, col
}
