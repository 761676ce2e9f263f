package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// newPythonParser creates a tree-sitter parser configured for Python.
func newPythonParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return p
}

// Node types for Python declarations and imports, as produced by the
// tree-sitter Python grammar.
const (
	NodeModule         = "module"
	NodeFunctionDef    = "function_definition"
	NodeClassDef       = "class_definition"
	NodeDecoratedDef   = "decorated_definition"
	NodeDecorator      = "decorator"
	NodeImport         = "import_statement"
	NodeImportFrom     = "import_from_statement"
	NodeAliasedImport  = "aliased_import"
	NodeDottedName     = "dotted_name"
	NodeRelativeImport = "relative_import"
	NodeWildcardImport = "wildcard_import"
	NodeIdentifier     = "identifier"
	NodeAttribute      = "attribute"
	NodeAssignment     = "assignment"
	NodeAugmented      = "augmented_assignment"
	NodeBlock          = "block"
	NodeString         = "string"
	NodeComment        = "comment"
)
