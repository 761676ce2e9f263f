package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// DumpOptions customizes how a structural dump renders identifier references.
// The zero value produces a plain dump.
type DumpOptions struct {
	// Resolve maps a local name in scope to its canonical dotted path.
	// When set, identifiers and the base of pure attribute chains are
	// rewritten to their canonical form in the dump.
	Resolve func(local string) (canonical string, ok bool)
	// OnReference is called with a canonical->local entry for every
	// attribute-access prefix of a resolved reference.
	OnReference func(canonical, local string)
	// OnSubstitution is called for every local->canonical rewrite actually
	// performed. A name that already equals its canonical form is left
	// alone and reported only through OnReference.
	OnSubstitution func(local, canonical string)
}

// Dump renders a node as a structural S-expression: named nodes with their
// leaf text, unnamed tokens as-is, comments skipped. Two nodes are
// structurally identical iff their dumps are equal.
func Dump(n *sitter.Node, source []byte) string {
	return DumpWith(n, source, DumpOptions{})
}

// DumpWith renders a node as a structural S-expression, rewriting imported
// name references to their canonical dotted form according to opts. Pure
// attribute chains (dotted identifier paths) are collapsed so that a
// rewritten reference compares equal to hand-written dotted-access syntax
// for the same path.
func DumpWith(n *sitter.Node, source []byte, opts DumpOptions) string {
	var b strings.Builder
	d := dumper{source: source, opts: opts}
	d.node(&b, n, true)
	return b.String()
}

type dumper struct {
	source []byte
	opts   DumpOptions
}

// node dispatches on the node kind. The resolve flag is cleared for
// subtrees where identifiers are declarations rather than references
// (import clauses, parameter lists, definition names, attribute and
// keyword-argument names).
func (d *dumper) node(b *strings.Builder, n *sitter.Node, resolve bool) {
	switch n.Type() {
	case NodeComment:
		// skipped entirely
	case NodeIdentifier:
		d.identifier(b, n, resolve)
	case NodeAttribute:
		d.attribute(b, n, resolve)
	case NodeImport, NodeImportFrom, "parameters", "lambda_parameters":
		d.generic(b, n, false)
	case "keyword_argument":
		d.keywordArgument(b, n, resolve)
	case NodeFunctionDef, NodeClassDef:
		d.definition(b, n, resolve)
	default:
		d.generic(b, n, resolve)
	}
}

func (d *dumper) generic(b *strings.Builder, n *sitter.Node, resolve bool) {
	b.WriteByte('(')
	b.WriteString(n.Type())
	if n.Type() == NodeString {
		// string contents are not fully represented as child nodes
		b.WriteByte(' ')
		b.WriteString(n.Content(d.source))
		b.WriteByte(')')
		return
	}
	if n.ChildCount() == 0 {
		if text := n.Content(d.source); text != "" {
			b.WriteByte(' ')
			b.WriteString(text)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == NodeComment {
			continue
		}
		b.WriteByte(' ')
		if !child.IsNamed() {
			b.WriteString(child.Type())
			continue
		}
		d.node(b, child, resolve)
	}
	b.WriteByte(')')
}

func (d *dumper) identifier(b *strings.Builder, n *sitter.Node, resolve bool) {
	text := n.Content(d.source)
	if resolve && d.opts.Resolve != nil {
		if canonical, ok := d.opts.Resolve(text); ok {
			d.reference(canonical, text)
			if canonical != text {
				d.substitution(text, canonical)
				writeDotted(b, canonical)
				return
			}
		}
	}
	b.WriteString("(identifier ")
	b.WriteString(text)
	b.WriteByte(')')
}

// attribute collapses pure dotted chains into the same shape writeDotted
// produces, resolving the chain through its base identifier. Resolution of
// longer chain prefixes against direct-import bindings (key "os.path" for
// a usage written "os.path.join") is intentionally not attempted; see the
// statement checker for the documented limitation.
func (d *dumper) attribute(b *strings.Builder, n *sitter.Node, resolve bool) {
	path, pure := DottedPath(n, d.source)
	if !pure {
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		b.WriteString("(attribute ")
		if obj != nil {
			d.node(b, obj, resolve)
		}
		b.WriteByte(' ')
		if attr != nil {
			b.WriteString("(identifier ")
			b.WriteString(attr.Content(d.source))
			b.WriteByte(')')
		}
		b.WriteByte(')')
		return
	}

	segments := strings.Split(path, ".")
	if resolve && d.opts.Resolve != nil {
		if canonical, ok := d.opts.Resolve(segments[0]); ok {
			canonicalPrefix, localPrefix := canonical, segments[0]
			d.reference(canonicalPrefix, localPrefix)
			for _, segment := range segments[1:] {
				canonicalPrefix += "." + segment
				localPrefix += "." + segment
				d.reference(canonicalPrefix, localPrefix)
			}
			if canonical != segments[0] {
				d.substitution(segments[0], canonical)
			}
			writeDotted(b, canonicalPrefix)
			return
		}
	}
	writeDotted(b, path)
}

func (d *dumper) keywordArgument(b *strings.Builder, n *sitter.Node, resolve bool) {
	b.WriteByte('(')
	b.WriteString(n.Type())
	sawName := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == NodeComment {
			continue
		}
		b.WriteByte(' ')
		if !child.IsNamed() {
			b.WriteString(child.Type())
			continue
		}
		if !sawName {
			// the argument name is not a reference
			sawName = true
			d.node(b, child, false)
			continue
		}
		d.node(b, child, resolve)
	}
	b.WriteByte(')')
}

func (d *dumper) definition(b *strings.Builder, n *sitter.Node, resolve bool) {
	name := n.ChildByFieldName("name")
	b.WriteByte('(')
	b.WriteString(n.Type())
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == NodeComment {
			continue
		}
		b.WriteByte(' ')
		if !child.IsNamed() {
			b.WriteString(child.Type())
			continue
		}
		if name != nil && child.StartByte() == name.StartByte() && child.EndByte() == name.EndByte() {
			d.node(b, child, false)
			continue
		}
		d.node(b, child, resolve)
	}
	b.WriteByte(')')
}

func (d *dumper) reference(canonical, local string) {
	if d.opts.OnReference != nil {
		d.opts.OnReference(canonical, local)
	}
}

func (d *dumper) substitution(local, canonical string) {
	if d.opts.OnSubstitution != nil {
		d.opts.OnSubstitution(local, canonical)
	}
}

// DottedPath returns the dotted text of a pure attribute chain (identifiers
// joined by attribute access, e.g. "os.path.join"), or false when the chain
// contains any other expression kind.
func DottedPath(n *sitter.Node, source []byte) (string, bool) {
	switch n.Type() {
	case NodeIdentifier:
		return n.Content(source), true
	case NodeAttribute:
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj == nil || attr == nil || attr.Type() != NodeIdentifier {
			return "", false
		}
		prefix, ok := DottedPath(obj, source)
		if !ok {
			return "", false
		}
		return prefix + "." + attr.Content(source), true
	}
	return "", false
}

// DumpDotted returns the structural dump of a hand-written dotted path.
// "os.path" becomes (attribute (identifier os) (identifier path)).
func DumpDotted(path string) string {
	segments := strings.Split(path, ".")
	expr := "(identifier " + segments[0] + ")"
	for _, segment := range segments[1:] {
		expr = "(attribute " + expr + " (identifier " + segment + "))"
	}
	return expr
}

func writeDotted(b *strings.Builder, path string) {
	b.WriteString(DumpDotted(path))
}
