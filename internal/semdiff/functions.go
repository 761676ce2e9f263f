package semdiff

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pydiff/pydiff/internal/extract"
	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/output"
	"github.com/pydiff/pydiff/internal/parser"
)

// ImplementationChange is one recorded change in a function body.
type ImplementationChange interface {
	// Message returns a human-readable description of the change.
	Message() string

	// key deduplicates equivalent changes within one function diff.
	key() string
}

// genericChange is the fallback when statements differ and no narrower
// cause was identified.
type genericChange struct{}

func (genericChange) Message() string { return "Code semantics changed" }
func (genericChange) key() string     { return "generic" }

// StatementChange wraps a statement-level difference that was explained
// by import aliasing.
type StatementChange struct {
	Diff *StatementDiff
}

func (c *StatementChange) Message() string {
	if !c.Diff.Specific() {
		return genericChange{}.Message()
	}
	lines := make([]string, 0, len(c.Diff.Aliases))
	for _, alias := range c.Diff.Aliases {
		lines = append(lines, fmt.Sprintf("References to %s were replaced with references to %s", output.HL(alias.Old), output.HL(alias.New)))
	}
	return strings.Join(lines, "\n")
}

func (c *StatementChange) key() string {
	if !c.Diff.Specific() {
		return genericChange{}.key()
	}
	parts := make([]string, 0, len(c.Diff.Aliases))
	for _, alias := range c.Diff.Aliases {
		parts = append(parts, alias.Old+">"+alias.New)
	}
	return "statement:" + strings.Join(parts, ",")
}

// ExternalUsageChange records a change in which imported names a function
// body references.
type ExternalUsageChange struct {
	// Gone lists imported names the old body used and the new no longer
	// does, sorted.
	Gone []string
	// Appeared lists imported names only the new body uses, sorted.
	Appeared []string
}

func (c *ExternalUsageChange) Message() string {
	var lines []string
	if len(c.Gone) > 0 {
		lines = append(lines, "No longer uses imported "+output.HLList(c.Gone))
	}
	if len(c.Appeared) > 0 {
		lines = append(lines, "Newly uses imported "+output.HLList(c.Appeared))
	}
	return strings.Join(lines, "\n")
}

func (c *ExternalUsageChange) key() string { return "external" }

// FunctionDiff holds the differences between two versions of a function.
type FunctionDiff struct {
	// Name is the function name in the new version.
	Name string
	// OldName is set iff the function was renamed.
	OldName string

	changes map[string]ImplementationChange
	noun    string
}

func newFunctionDiff(name string) *FunctionDiff {
	return &FunctionDiff{
		Name:    name,
		changes: make(map[string]ImplementationChange),
		noun:    "function",
	}
}

func (d *FunctionDiff) record(change ImplementationChange) {
	d.changes[change.key()] = change
}

// Empty reports whether no difference was recorded.
func (d *FunctionDiff) Empty() bool {
	return d == nil || (d.OldName == "" && len(d.changes) == 0)
}

// Changes returns the recorded implementation changes, ordered by message.
func (d *FunctionDiff) Changes() []ImplementationChange {
	changes := make([]ImplementationChange, 0, len(d.changes))
	for _, change := range d.changes {
		changes = append(changes, change)
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Message() < changes[j].Message()
	})
	return changes
}

// SetMethod switches rendering from function to method vocabulary.
// Calling it more than once has no further effect.
func (d *FunctionDiff) SetMethod() {
	d.noun = "method"
}

// Text renders the diff, one change description per line.
func (d *FunctionDiff) Text() string {
	var lines []string
	if d.OldName != "" {
		lines = append(lines, fmt.Sprintf("%s %s renamed to %s", titled(d.noun), output.HL(d.OldName), output.HL(d.Name)))
	}
	if len(d.changes) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s changed implementation:", titled(d.noun), output.HL(d.Name)))
		entries := make([]string, 0, len(d.changes))
		for _, change := range d.changes {
			entries = append(entries, "  - "+strings.ReplaceAll(change.Message(), "\n", "\n  - "))
		}
		sort.Strings(entries)
		lines = append(lines, entries...)
	}
	return strings.Join(lines, "\n")
}

// DiffFunction compares two versions of a function under their respective
// import models. It returns nil when the functions do not differ.
//
// Bodies are compared statement by statement. A length mismatch or a
// statement difference with no alias explanation is recorded as a single
// generic change. Independently, the symmetric difference of imported
// names referenced by the two bodies is recorded when non-empty.
func DiffFunction(old, new extract.Function, oldModel, newModel *imports.Model) *FunctionDiff {
	d := newFunctionDiff(new.Name)
	if old.Name != new.Name {
		d.OldName = old.Name
	}

	oldBody := old.Body()
	newBody := new.Body()
	for i := 0; i < len(oldBody) || i < len(newBody); i++ {
		if i >= len(oldBody) || i >= len(newBody) {
			d.record(genericChange{})
			break
		}
		change := CompareStatements(oldBody[i], old.Unit.Source, newBody[i], new.Unit.Source, oldModel, newModel)
		if change == nil {
			continue
		}
		if change.Specific() {
			d.record(&StatementChange{Diff: change})
		} else {
			d.record(genericChange{})
		}
	}

	if usage := compareImportUsage(old, new, oldModel, newModel); usage != nil {
		d.record(usage)
	}

	if d.Empty() {
		return nil
	}
	return d
}

// compareImportUsage computes the symmetric difference of imported names
// referenced by the two bodies. Returns nil when the sets match.
func compareImportUsage(old, new extract.Function, oldModel, newModel *imports.Model) *ExternalUsageChange {
	oldNames := externalNames(old, oldModel)
	newNames := externalNames(new, newModel)

	change := &ExternalUsageChange{}
	for name := range oldNames {
		if _, ok := newNames[name]; !ok {
			change.Gone = append(change.Gone, name)
		}
	}
	for name := range newNames {
		if _, ok := oldNames[name]; !ok {
			change.Appeared = append(change.Appeared, name)
		}
	}
	if len(change.Gone) == 0 && len(change.Appeared) == 0 {
		return nil
	}
	sort.Strings(change.Gone)
	sort.Strings(change.Appeared)
	return change
}

// externalNames collects the imported names a function body references.
// For a dotted chain the shortest prefix bound by an import is recorded,
// so "os.path.join" under "import os.path" contributes "os.path".
func externalNames(f extract.Function, model *imports.Model) map[string]struct{} {
	names := make(map[string]struct{})
	for _, stmt := range f.Body() {
		parser.Walk(stmt, func(n *sitter.Node) bool {
			switch n.Type() {
			case parser.NodeAttribute:
				path, ok := parser.DottedPath(n, f.Unit.Source)
				if !ok {
					return true
				}
				if prefix, found := importedPrefix(path, model); found {
					names[prefix] = struct{}{}
				}
				return false
			case parser.NodeIdentifier:
				name := f.Unit.Content(n)
				if model.Contains(name) {
					names[name] = struct{}{}
				}
			}
			return true
		})
	}
	return names
}

// importedPrefix finds the shortest dotted prefix of path that is bound
// by an import.
func importedPrefix(path string, model *imports.Model) (string, bool) {
	segments := strings.Split(path, ".")
	for i := 1; i <= len(segments); i++ {
		prefix := strings.Join(segments[:i], ".")
		if model.Contains(prefix) {
			return prefix, true
		}
	}
	return "", false
}

// FunctionsDiff holds differences over a set of functions sharing a
// scope, either a module's top level or a class body.
type FunctionsDiff struct {
	// New lists functions only present in the new version.
	New []extract.Function
	// Removed lists names of functions only present in the old version.
	Removed []string
	// Changed maps function name to its diff.
	Changed map[string]*FunctionDiff

	noun string
}

// Empty reports whether no difference was recorded.
func (d *FunctionsDiff) Empty() bool {
	return d == nil || (len(d.New) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0)
}

// SetMethod switches rendering of this diff and every nested function
// diff to method vocabulary. Idempotent.
func (d *FunctionsDiff) SetMethod() {
	d.noun = "method"
	for _, change := range d.Changed {
		change.SetMethod()
	}
}

// Simplify prunes nested diffs that became empty after manipulation.
// Returns nil when nothing remains.
func (d *FunctionsDiff) Simplify() *FunctionsDiff {
	if d == nil {
		return nil
	}
	changed := make(map[string]*FunctionDiff)
	for name, change := range d.Changed {
		if !change.Empty() {
			changed[name] = change
		}
	}
	d.Changed = changed
	if d.Empty() {
		return nil
	}
	return d
}

// Text renders the diff: new functions first, then removed, then changed,
// each group sorted by name.
func (d *FunctionsDiff) Text() string {
	noun := d.noun
	if noun == "" {
		noun = "function"
	}

	var lines []string
	for _, f := range sortedFunctions(d.New) {
		lines = append(lines, fmt.Sprintf("New %s %s", summaryNoun(noun, f), output.HL(f.Name)))
	}
	removed := append([]string(nil), d.Removed...)
	sort.Strings(removed)
	for _, name := range removed {
		lines = append(lines, fmt.Sprintf("Removed %s %s", noun, output.HL(name)))
	}
	for _, name := range sortedDiffKeys(d.Changed) {
		lines = append(lines, d.Changed[name].Text())
	}
	return strings.Join(lines, "\n")
}

// diffFunctionMaps compares two function sets keyed by name. Functions
// present on both sides are diffed pairwise; the rest are reported new or
// removed. Returns nil when nothing differs.
func diffFunctionMaps(old, new map[string]extract.Function, oldModel, newModel *imports.Model) *FunctionsDiff {
	d := &FunctionsDiff{Changed: make(map[string]*FunctionDiff), noun: "function"}
	for name, newFn := range new {
		oldFn, ok := old[name]
		if !ok {
			d.New = append(d.New, newFn)
			continue
		}
		if change := DiffFunction(oldFn, newFn, oldModel, newModel); change != nil {
			d.Changed[name] = change
		}
	}
	for name := range old {
		if _, ok := new[name]; !ok {
			d.Removed = append(d.Removed, name)
		}
	}
	if d.Empty() {
		return nil
	}
	return d
}

// summaryNoun names a function in summaries, honoring property decorators
// in class context.
func summaryNoun(noun string, f extract.Function) string {
	if f.Property && noun == "method" {
		return "property"
	}
	return noun
}

func sortedFunctions(fns []extract.Function) []extract.Function {
	sorted := append([]extract.Function(nil), fns...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

func sortedDiffKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func titled(noun string) string {
	if noun == "" {
		return noun
	}
	return strings.ToUpper(noun[:1]) + noun[1:]
}
