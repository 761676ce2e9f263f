package semdiff

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pydiff/pydiff/internal/extract"
	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/output"
)

// ErrMultipleInheritance marks an attempt to render a class with more
// than one base class. Computing a diff for such a class works; only the
// textual summary is unsupported.
var ErrMultipleInheritance = errors.New("multiple inheritance is not supported")

// ClassSummaryText renders a one-line description of a class, naming its
// base class and public method count.
func ClassSummaryText(c extract.Class) (string, error) {
	classPart := fmt.Sprintf("class %s", output.HL(c.Name))
	public := c.PublicMethods()
	methodPart := fmt.Sprintf("with %d public %s", public, output.Pluralize("method", public))

	switch len(c.Bases) {
	case 0:
		return fmt.Sprintf("%s %s", classPart, methodPart), nil
	case 1:
		base := c.Bases[0]
		origin := "local"
		if base.Imported {
			origin = "imported"
		}
		return fmt.Sprintf("%s derived from %s %s %s", classPart, origin, output.HL(base.Name), methodPart), nil
	default:
		return "", fmt.Errorf("%w: class %s has %d base classes", ErrMultipleInheritance, c.Name, len(c.Bases))
	}
}

// ClassDiff holds the differences between two versions of a class.
type ClassDiff struct {
	// Name is the class name.
	Name string
	// Methods is the method-set diff, rendered in method vocabulary.
	// Nil when the method sets match.
	Methods *FunctionsDiff
	// NewAttributes lists instance attributes only assigned in the new
	// version, sorted.
	NewAttributes []string
	// RemovedAttributes lists instance attributes only assigned in the
	// old version, sorted.
	RemovedAttributes []string
}

// Empty reports whether no difference was recorded.
func (d *ClassDiff) Empty() bool {
	return d == nil || (d.Methods.Empty() && len(d.NewAttributes) == 0 && len(d.RemovedAttributes) == 0)
}

// Text renders the diff as a header line followed by indented changes.
func (d *ClassDiff) Text() string {
	lines := []string{fmt.Sprintf("Class %s changed:", output.HL(d.Name))}
	if len(d.RemovedAttributes) > 0 {
		lines = append(lines, fmt.Sprintf("  Removed %s %s",
			output.Pluralize("attribute", len(d.RemovedAttributes)), output.HLList(d.RemovedAttributes)))
	}
	if len(d.NewAttributes) > 0 {
		lines = append(lines, fmt.Sprintf("  New %s %s",
			output.Pluralize("attribute", len(d.NewAttributes)), output.HLList(d.NewAttributes)))
	}
	if !d.Methods.Empty() {
		for _, line := range strings.Split(d.Methods.Text(), "\n") {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// DiffClass compares two versions of a class under their respective
// import models. Returns nil when the classes do not differ.
func DiffClass(old, new extract.Class, oldModel, newModel *imports.Model) *ClassDiff {
	d := &ClassDiff{Name: new.Name}

	if methods := diffFunctionMaps(old.Methods, new.Methods, oldModel, newModel); methods != nil {
		methods.SetMethod()
		d.Methods = methods
	}

	d.RemovedAttributes = subtractSorted(old.Attributes, new.Attributes)
	d.NewAttributes = subtractSorted(new.Attributes, old.Attributes)

	if d.Empty() {
		return nil
	}
	return d
}

// subtractSorted returns the members of a not present in b, sorted.
func subtractSorted(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, name := range b {
		exclude[name] = struct{}{}
	}
	var result []string
	for _, name := range a {
		if _, ok := exclude[name]; !ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// ClassesDiff holds differences over the classes of a module. Classes
// present only in the old version are reported at the package level, not
// here.
type ClassesDiff struct {
	// New lists classes only present in the new version.
	New []extract.Class
	// Changed maps class name to its diff.
	Changed map[string]*ClassDiff
}

// Empty reports whether no difference was recorded.
func (d *ClassesDiff) Empty() bool {
	return d == nil || (len(d.New) == 0 && len(d.Changed) == 0)
}

// Simplify prunes nested diffs that became empty after manipulation.
// Returns nil when nothing remains.
func (d *ClassesDiff) Simplify() *ClassesDiff {
	if d == nil {
		return nil
	}
	changed := make(map[string]*ClassDiff)
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

// Text renders the diff: new classes first, then changed classes, each
// group sorted by name. Fails for classes with multiple base classes.
func (d *ClassesDiff) Text() (string, error) {
	var lines []string
	newClasses := append([]extract.Class(nil), d.New...)
	sort.Slice(newClasses, func(i, j int) bool { return newClasses[i].Name < newClasses[j].Name })
	for _, c := range newClasses {
		summary, err := ClassSummaryText(c)
		if err != nil {
			return "", err
		}
		lines = append(lines, "New "+summary)
	}
	for _, name := range sortedDiffKeys(d.Changed) {
		lines = append(lines, d.Changed[name].Text())
	}
	return strings.Join(lines, "\n"), nil
}

// DiffClasses compares two class sets keyed by name. Returns nil when
// nothing differs.
func DiffClasses(old, new map[string]extract.Class, oldModel, newModel *imports.Model) *ClassesDiff {
	d := &ClassesDiff{Changed: make(map[string]*ClassDiff)}
	for name, newClass := range new {
		oldClass, ok := old[name]
		if !ok {
			d.New = append(d.New, newClass)
			continue
		}
		if change := DiffClass(oldClass, newClass, oldModel, newModel); change != nil {
			d.Changed[name] = change
		}
	}
	if d.Empty() {
		return nil
	}
	return d
}
