package extract

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/parser"
)

// BaseClass is one base-class reference of a class definition, classified
// against the unit's import model.
type BaseClass struct {
	// Name is the base-class reference as written.
	Name string
	// Imported is true when the reference resolves through an import,
	// false for a locally defined base.
	Imported bool
}

// Class is the summary of one class definition.
type Class struct {
	// Name is the declared class name.
	Name string
	// Methods are the function definitions of the class body, keyed by name.
	Methods map[string]Function
	// Attributes are the instance attributes assigned through the methods'
	// implicit first parameter, sorted.
	Attributes []string
	// Bases are the base-class references in declaration order.
	Bases []BaseClass
}

// MethodNames returns the method names, sorted.
func (c Class) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublicMethods counts methods whose name does not start with an underscore.
func (c Class) PublicMethods() int {
	return len(c.Methods) - c.PrivateMethods()
}

// PrivateMethods counts methods whose name starts with an underscore.
func (c Class) PrivateMethods() int {
	private := 0
	for name := range c.Methods {
		if strings.HasPrefix(name, "_") {
			private++
		}
	}
	return private
}

// Classes collects the top-level class definitions of a unit, keyed by
// name. Base classes are classified local or imported against the unit's
// import model.
func Classes(u *parser.Unit, model *imports.Model) map[string]Class {
	classes := make(map[string]Class)
	for _, stmt := range u.Statements() {
		def := stmt
		if def.Type() == parser.NodeDecoratedDef {
			inner := def.ChildByFieldName("definition")
			if inner == nil {
				continue
			}
			def = inner
		}
		if def.Type() != parser.NodeClassDef {
			continue
		}
		if class, ok := classSummary(u, def, model); ok {
			classes[class.Name] = class
		}
	}
	return classes
}

func classSummary(u *parser.Unit, def *sitter.Node, model *imports.Model) (Class, bool) {
	name := def.ChildByFieldName("name")
	if name == nil {
		return Class{}, false
	}

	class := Class{
		Name:  u.Content(name),
		Bases: baseClasses(u, def, model),
	}
	class.Methods = collectFunctions(u, def.ChildByFieldName("body"))
	class.Attributes = instanceAttributes(u, class.Methods)
	return class, true
}

// baseClasses classifies each base-class reference of a class definition.
// A reference is imported when its base name is bound by an import.
func baseClasses(u *parser.Unit, def *sitter.Node, model *imports.Model) []BaseClass {
	superclasses := def.ChildByFieldName("superclasses")
	if superclasses == nil {
		return nil
	}

	var bases []BaseClass
	for i := 0; i < int(superclasses.NamedChildCount()); i++ {
		child := superclasses.NamedChild(i)
		switch child.Type() {
		case "keyword_argument":
			// metaclass= and friends are not base classes
			continue
		case parser.NodeComment:
			continue
		}
		path, ok := parser.DottedPath(child, u.Source)
		if !ok {
			path = u.Content(child)
		}
		base := path
		if dot := strings.IndexByte(path, '.'); dot >= 0 {
			base = path[:dot]
		}
		imported := model != nil && model.Contains(base)
		bases = append(bases, BaseClass{Name: path, Imported: imported})
	}
	return bases
}

// instanceAttributes scans assignment targets in every method body for
// attribute access on the method's implicit first parameter and unions the
// attribute names.
func instanceAttributes(u *parser.Unit, methods map[string]Function) []string {
	seen := make(map[string]struct{})
	for _, method := range methods {
		receiver := firstParameterName(u, method.Def)
		if receiver == "" {
			continue
		}
		body := method.Def.ChildByFieldName("body")
		parser.Walk(body, func(n *sitter.Node) bool {
			if n.Type() != parser.NodeAssignment {
				return true
			}
			left := n.ChildByFieldName("left")
			collectReceiverAttributes(u, left, receiver, seen)
			return true
		})
	}

	attrs := make([]string, 0, len(seen))
	for attr := range seen {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}

// collectReceiverAttributes gathers "receiver.attr" targets from an
// assignment left-hand side, including tuple targets.
func collectReceiverAttributes(u *parser.Unit, target *sitter.Node, receiver string, seen map[string]struct{}) {
	parser.Walk(target, func(n *sitter.Node) bool {
		if n.Type() != parser.NodeAttribute {
			return true
		}
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj != nil && attr != nil &&
			obj.Type() == parser.NodeIdentifier && u.Content(obj) == receiver {
			seen[u.Content(attr)] = struct{}{}
		}
		return false
	})
}

// firstParameterName returns the name of a function's first parameter, or
// "" when the function takes none.
func firstParameterName(u *parser.Unit, def *sitter.Node) string {
	if def == nil {
		return ""
	}
	params := def.ChildByFieldName("parameters")
	if params == nil || params.NamedChildCount() == 0 {
		return ""
	}

	first := params.NamedChild(0)
	switch first.Type() {
	case parser.NodeIdentifier:
		return u.Content(first)
	case "typed_parameter":
		if ident := first.NamedChild(0); ident != nil && ident.Type() == parser.NodeIdentifier {
			return u.Content(ident)
		}
	case "default_parameter", "typed_default_parameter":
		if name := first.ChildByFieldName("name"); name != nil {
			return u.Content(name)
		}
	}
	return ""
}
