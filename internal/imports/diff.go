package imports

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pydiff/pydiff/internal/output"
)

// PackageImportChange is one reduced import transition: a module whose
// imports moved between the "from M import X" form and the "import M" form.
type PackageImportChange struct {
	// Package is the canonical module name.
	Package string
	// Names are the from-imported local names involved in the transition.
	Names []string
}

// Diff holds the differences between the import statements of two units.
type Diff struct {
	// New and Removed are added and removed direct imports.
	New     []ImportedName
	Removed []ImportedName
	// NewFrom and RemovedFrom are added and removed from-import names,
	// keyed by origin module.
	NewFrom     map[string][]ImportedName
	RemovedFrom map[string][]ImportedName
	// NewFromModules and RemovedFromModules are modules that gained their
	// first from-import or lost their last one.
	NewFromModules     []string
	RemovedFromModules []string
	// Upgraded and Downgraded are transitions recognized by the reduction
	// pass: from-import became direct import, and the reverse.
	Upgraded   []PackageImportChange
	Downgraded []PackageImportChange
}

// Compare returns the differences in import statements between two models,
// or nil if they bind the same names.
func Compare(old, new *Model) *Diff {
	d := &Diff{
		NewFrom:     make(map[string][]ImportedName),
		RemovedFrom: make(map[string][]ImportedName),
	}

	for name, imported := range new.names {
		if old.Contains(name) {
			continue
		}
		switch imported.Kind {
		case KindImport:
			d.New = append(d.New, imported)
		case KindFromImport:
			if imported.Module != "" {
				d.NewFrom[imported.Module] = append(d.NewFrom[imported.Module], imported)
			}
		}
	}

	for name, imported := range old.names {
		if new.Contains(name) {
			continue
		}
		switch imported.Kind {
		case KindImport:
			d.Removed = append(d.Removed, imported)
		case KindFromImport:
			if imported.Module != "" {
				d.RemovedFrom[imported.Module] = append(d.RemovedFrom[imported.Module], imported)
			}
		}
	}

	for _, module := range new.FromModules() {
		if !old.hasFromModule(module) {
			d.NewFromModules = append(d.NewFromModules, module)
		}
	}
	for _, module := range old.FromModules() {
		if !new.hasFromModule(module) {
			d.RemovedFromModules = append(d.RemovedFromModules, module)
		}
	}

	if d.Empty() {
		return nil
	}
	return d
}

// Empty reports whether the diff carries no recorded change.
func (d *Diff) Empty() bool {
	if d == nil {
		return true
	}
	return len(d.New) == 0 &&
		len(d.Removed) == 0 &&
		len(d.NewFrom) == 0 &&
		len(d.RemovedFrom) == 0 &&
		len(d.NewFromModules) == 0 &&
		len(d.RemovedFromModules) == 0 &&
		len(d.Upgraded) == 0 &&
		len(d.Downgraded) == 0
}

// Simplify prunes empty nested entries after external manipulation and
// returns nil if nothing remains.
func (d *Diff) Simplify() *Diff {
	if d == nil {
		return nil
	}
	for module, names := range d.NewFrom {
		if len(names) == 0 {
			delete(d.NewFrom, module)
		}
	}
	for module, names := range d.RemovedFrom {
		if len(names) == 0 {
			delete(d.RemovedFrom, module)
		}
	}
	if d.Empty() {
		return nil
	}
	return d
}

// Text renders one change description per line, identifiers wrapped in the
// highlight marker pair.
func (d *Diff) Text() string {
	if d.Empty() {
		return ""
	}
	var lines []string

	if removed := localNames(d.Removed); len(removed) > 0 {
		packages := output.Pluralize("package", len(removed))
		lines = append(lines, fmt.Sprintf("Removed import of %s %s", packages, output.HLList(removed)))
	}
	if added := localNames(d.New); len(added) > 0 {
		packages := output.Pluralize("package", len(added))
		lines = append(lines, fmt.Sprintf("New imported %s %s", packages, output.HLList(added)))
	}

	for _, module := range sortedKeys(d.RemovedFrom) {
		names := localNames(d.RemovedFrom[module])
		if containsString(d.RemovedFromModules, module) {
			lines = append(lines, fmt.Sprintf("Removed import of %s from removed %s", output.HLList(names), output.HL(module)))
		} else {
			lines = append(lines, fmt.Sprintf("Removed import of %s from %s", output.HLList(names), output.HL(module)))
		}
	}
	for _, module := range sortedKeys(d.NewFrom) {
		names := localNames(d.NewFrom[module])
		if containsString(d.NewFromModules, module) {
			lines = append(lines, fmt.Sprintf("New imported %s from new %s", output.HLList(names), output.HL(module)))
		} else {
			lines = append(lines, fmt.Sprintf("New imported %s from %s", output.HLList(names), output.HL(module)))
		}
	}

	for _, change := range sortedChanges(d.Upgraded) {
		tense := "was"
		if len(change.Names) > 1 {
			tense = "were"
		}
		lines = append(lines, fmt.Sprintf("New imported package %s (previously, only %s %s imported from %s)",
			output.HL(change.Package), output.HLList(change.Names), tense, output.HL(change.Package)))
	}
	for _, change := range sortedChanges(d.Downgraded) {
		tense := "is"
		if len(change.Names) > 1 {
			tense = "are"
		}
		lines = append(lines, fmt.Sprintf("Removed import of package %s (now, only %s %s imported from %s)",
			output.HL(change.Package), output.HLList(change.Names), tense, output.HL(change.Package)))
	}

	return strings.Join(lines, "\n")
}

// localNames returns the sorted local names of a set of bindings.
func localNames(imported []ImportedName) []string {
	names := make([]string, 0, len(imported))
	for _, imp := range imported {
		names = append(names, imp.Local)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string][]ImportedName) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedChanges(changes []PackageImportChange) []PackageImportChange {
	sorted := append([]PackageImportChange(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Package < sorted[j].Package })
	return sorted
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func removeString(haystack []string, needle string) []string {
	kept := haystack[:0]
	for _, s := range haystack {
		if s != needle {
			kept = append(kept, s)
		}
	}
	return kept
}
