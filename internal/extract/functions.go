// Package extract walks parsed units and produces declaration summaries:
// functions (with their bodies) and classes (with their methods, base
// classes and assigned instance attributes). The differs compare summaries
// from two versions of a unit.
package extract

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pydiff/pydiff/internal/parser"
)

// Function is the summary of one function-like definition.
type Function struct {
	// Name is the declared function name. Two summaries describe the same
	// declaration iff their names match.
	Name string
	// Def is the function_definition node.
	Def *sitter.Node
	// Unit is the parsed unit the definition belongs to.
	Unit *parser.Unit
	// Property marks a definition decorated with a bare property-style
	// decorator.
	Property bool
}

// Body returns the ordered statements of the function body.
func (f Function) Body() []*sitter.Node {
	if f.Def == nil {
		return nil
	}
	return parser.BlockStatements(f.Def.ChildByFieldName("body"))
}

// Functions collects the top-level function definitions of a unit, keyed by
// name. Definitions inside class bodies are not visited.
func Functions(u *parser.Unit) map[string]Function {
	return collectFunctions(u, u.Root)
}

// ErrNotOneFunction is returned by SingleFunction when the source does not
// consist of exactly one top-level function definition.
var ErrNotOneFunction = errors.New("not exactly one top-level function")

// SingleFunction returns the summary of a unit expected to contain exactly
// one top-level function and nothing else.
func SingleFunction(u *parser.Unit) (Function, error) {
	stmts := u.Statements()
	if len(stmts) != 1 {
		return Function{}, fmt.Errorf("%w: found %d top-level statements", ErrNotOneFunction, len(stmts))
	}

	stmt := stmts[0]
	if stmt.Type() == parser.NodeDecoratedDef {
		if def := stmt.ChildByFieldName("definition"); def != nil {
			stmt = def
		}
	}
	if stmt.Type() != parser.NodeFunctionDef {
		return Function{}, fmt.Errorf("%w: top-level statement is a %s", ErrNotOneFunction, stmt.Type())
	}

	fns := collectFunctions(u, u.Root)
	for _, fn := range fns {
		return fn, nil
	}
	return Function{}, fmt.Errorf("%w: no function definition found", ErrNotOneFunction)
}

// collectFunctions gathers function definitions under root without
// descending into class bodies or nested functions.
func collectFunctions(u *parser.Unit, root *sitter.Node) map[string]Function {
	fns := make(map[string]Function)
	parser.Walk(root, func(n *sitter.Node) bool {
		if n == root {
			return true
		}
		switch n.Type() {
		case parser.NodeClassDef:
			return false
		case parser.NodeFunctionDef:
			if fn, ok := functionSummary(u, n, false); ok {
				fns[fn.Name] = fn
			}
			return false
		case parser.NodeDecoratedDef:
			def := n.ChildByFieldName("definition")
			if def != nil && def.Type() == parser.NodeFunctionDef {
				if fn, ok := functionSummary(u, def, hasPropertyDecorator(u, n)); ok {
					fns[fn.Name] = fn
				}
			}
			return false
		}
		return true
	})
	return fns
}

func functionSummary(u *parser.Unit, def *sitter.Node, property bool) (Function, bool) {
	name := def.ChildByFieldName("name")
	if name == nil {
		return Function{}, false
	}
	return Function{
		Name:     u.Content(name),
		Def:      def,
		Unit:     u,
		Property: property,
	}, true
}

// hasPropertyDecorator reports whether a decorated definition carries a
// bare "property" decorator.
func hasPropertyDecorator(u *parser.Unit, decorated *sitter.Node) bool {
	for i := 0; i < int(decorated.NamedChildCount()); i++ {
		child := decorated.NamedChild(i)
		if child.Type() != parser.NodeDecorator {
			continue
		}
		expr := child.NamedChild(0)
		if expr != nil && expr.Type() == parser.NodeIdentifier && u.Content(expr) == "property" {
			return true
		}
	}
	return false
}
