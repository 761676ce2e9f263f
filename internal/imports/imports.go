// Package imports models the names brought into scope by Python import
// statements.
//
// A Model maps every in-scope local name to the fully-qualified canonical
// entity it refers to, independent of aliasing: "import os.path as p" and
// "import os.path" both canonicalize to "os.path". The statement checker
// uses the model to decide whether two statements differ only in which
// alias they use for the same imported entity.
package imports

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pydiff/pydiff/internal/parser"
)

// Kind distinguishes the statement form that introduced a binding.
type Kind int

const (
	// KindImport is a direct "import X" binding.
	KindImport Kind = iota
	// KindFromImport is a "from M import X" binding.
	KindFromImport
)

// ImportedName is a single name binding introduced by an import statement.
// It is immutable once constructed.
type ImportedName struct {
	// Local is the identifier usable in the importing scope.
	Local string
	// Kind records whether the binding came from a direct or a from-import.
	Kind Kind
	// Module is the origin module of a from-import. Empty for direct
	// imports and for unresolvable relative imports.
	Module string
	// Original is the imported name as written in the origin module.
	// Differs from Local only when the import was aliased.
	Original string
	// Canonical is the fully-qualified dotted name of the imported entity,
	// stable under aliasing.
	Canonical string
}

// NewDirect builds the binding for one name of an "import a.b[, ...]"
// statement. The local name is the alias if present, else the dotted path.
func NewDirect(path, alias string) ImportedName {
	local := path
	if alias != "" {
		local = alias
	}
	return ImportedName{
		Local:     local,
		Kind:      KindImport,
		Original:  path,
		Canonical: path,
	}
}

// NewFrom builds the binding for one name of a "from m import x[ as y]"
// statement. An empty module marks an unresolvable relative import; the
// canonical name then degrades to the bare imported name.
func NewFrom(module, name, alias string) ImportedName {
	local := name
	if alias != "" {
		local = alias
	}
	canonical := name
	if module != "" {
		canonical = module + "." + name
	}
	return ImportedName{
		Local:     local,
		Kind:      KindFromImport,
		Module:    module,
		Original:  name,
		Canonical: canonical,
	}
}

// CanonicalExpr returns the structural dump of the canonical dotted path,
// equal to the dump of hand-written dotted-access syntax for the same path.
func (n ImportedName) CanonicalExpr() string {
	return parser.DumpDotted(n.Canonical)
}

// Model is the read-only mapping from in-scope local names to imported
// entities for one unit, plus the set of modules referenced by from-import
// statements. A name bound by a later import shadows an earlier binding.
type Model struct {
	names       map[string]ImportedName
	fromModules map[string]struct{}
}

// Extract builds the import model of a parsed unit. Imports nested inside
// function and class bodies contribute bindings the same way top-level
// imports do, in document order.
func Extract(u *parser.Unit) *Model {
	m := &Model{
		names:       make(map[string]ImportedName),
		fromModules: make(map[string]struct{}),
	}
	parser.Walk(u.Root, func(n *sitter.Node) bool {
		switch n.Type() {
		case parser.NodeImport:
			m.addImport(u, n)
			return false
		case parser.NodeImportFrom:
			m.addImportFrom(u, n)
			return false
		}
		return true
	})
	return m
}

// addImport records every name of an "import A[, B as C...]" statement.
func (m *Model) addImport(u *parser.Unit, stmt *sitter.Node) {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		switch child.Type() {
		case parser.NodeDottedName:
			m.bind(NewDirect(u.Content(child), ""))
		case parser.NodeAliasedImport:
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			m.bind(NewDirect(u.Content(name), u.Content(alias)))
		}
	}
}

// addImportFrom records every name of a "from M import X[, Y as Z...]"
// statement and the origin module when it is resolvable.
func (m *Model) addImportFrom(u *parser.Unit, stmt *sitter.Node) {
	moduleNode := stmt.ChildByFieldName("module_name")
	module := fromModuleName(u, moduleNode)

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case parser.NodeDottedName:
			m.bind(NewFrom(module, u.Content(child), ""))
		case parser.NodeAliasedImport:
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil || alias == nil {
				continue
			}
			m.bind(NewFrom(module, u.Content(name), u.Content(alias)))
		case parser.NodeWildcardImport:
			// "from m import *" binds no statically known names
		}
	}

	if module != "" {
		m.fromModules[module] = struct{}{}
	}
}

// fromModuleName extracts the dotted origin module of a from-import.
// Returns "" for a purely relative import ("from . import x").
func fromModuleName(u *parser.Unit, moduleNode *sitter.Node) string {
	if moduleNode == nil {
		return ""
	}
	switch moduleNode.Type() {
	case parser.NodeDottedName:
		return u.Content(moduleNode)
	case parser.NodeRelativeImport:
		for i := 0; i < int(moduleNode.NamedChildCount()); i++ {
			if child := moduleNode.NamedChild(i); child.Type() == parser.NodeDottedName {
				return u.Content(child)
			}
		}
	}
	return ""
}

func (m *Model) bind(name ImportedName) {
	// last binding wins, matching shadowing semantics
	m.names[name.Local] = name
}

// Contains reports whether a local name is bound by an import.
func (m *Model) Contains(name string) bool {
	_, ok := m.names[name]
	return ok
}

// Lookup returns the binding for a local name.
func (m *Model) Lookup(name string) (ImportedName, bool) {
	imported, ok := m.names[name]
	return imported, ok
}

// Resolve returns the canonical dotted path for a local name. It satisfies
// the resolver shape expected by parser.DumpOptions.
func (m *Model) Resolve(local string) (string, bool) {
	imported, ok := m.names[local]
	if !ok {
		return "", false
	}
	return imported.Canonical, true
}

// Names returns the bound local names, sorted.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.names))
	for name := range m.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromModules returns the modules referenced by from-import statements,
// sorted.
func (m *Model) FromModules() []string {
	modules := make([]string, 0, len(m.fromModules))
	for module := range m.fromModules {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Len returns the number of bound names.
func (m *Model) Len() int {
	return len(m.names)
}

func (m *Model) hasFromModule(module string) bool {
	_, ok := m.fromModules[module]
	return ok
}
