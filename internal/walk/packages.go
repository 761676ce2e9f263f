package walk

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pydiff/pydiff/internal/output"
)

// PackageReport holds the differences between two versions of one
// package: the diffs of its direct modules.
type PackageReport struct {
	Modules *ModulesReport
}

// Empty reports whether no difference was recorded.
func (r *PackageReport) Empty() bool {
	return r == nil || r.Modules.Empty()
}

// Text renders the report.
func (r *PackageReport) Text() string {
	return r.Modules.Text()
}

// Package compares two versions of a package directory, looking only at
// modules directly inside it. Returns nil when nothing differs.
func (d *Differ) Package(oldPkg, newPkg string) (*PackageReport, error) {
	if err := requireDir(oldPkg); err != nil {
		return nil, err
	}
	if err := requireDir(newPkg); err != nil {
		return nil, err
	}

	oldModules, err := d.packageModules(oldPkg)
	if err != nil {
		return nil, err
	}
	newModules, err := d.packageModules(newPkg)
	if err != nil {
		return nil, err
	}

	modules, err := d.Modules(oldPkg, newPkg, oldModules, newModules)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		return nil, nil
	}
	return &PackageReport{Modules: modules}, nil
}

// PackagesReport aggregates per-package results over a directory tree,
// keyed by relative path.
type PackagesReport struct {
	// New lists packages only present in the new tree, sorted.
	New []string
	// Removed lists packages only present in the old tree, sorted.
	Removed []string
	// Changed maps package path to its report.
	Changed map[string]*PackageReport
}

// Empty reports whether no difference was recorded.
func (r *PackagesReport) Empty() bool {
	return r == nil || (len(r.New) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0)
}

// Text renders the report: new packages, removed packages, then changed
// packages with their module diffs indented.
func (r *PackagesReport) Text() string {
	var lines []string
	for _, path := range r.New {
		lines = append(lines, "New package "+output.HL(path))
	}
	for _, path := range r.Removed {
		lines = append(lines, "Removed package "+output.HL(path))
	}
	changed := make([]string, 0, len(r.Changed))
	for path := range r.Changed {
		changed = append(changed, path)
	}
	sort.Strings(changed)
	for _, path := range changed {
		lines = append(lines, fmt.Sprintf("Package %s changed:", output.HL(path)))
		lines = append(lines, indent(r.Changed[path].Text()))
	}
	return strings.Join(lines, "\n")
}

// comparePackages diffs the packages found in two directory trees.
func (d *Differ) comparePackages(oldDir, newDir string, oldPackages, newPackages []string) (*PackagesReport, error) {
	removed, common, added := partition(oldPackages, newPackages)

	report := &PackagesReport{
		New:     added,
		Removed: removed,
		Changed: make(map[string]*PackageReport),
	}
	for _, path := range common {
		change, err := d.Package(filepath.Join(oldDir, path), filepath.Join(newDir, path))
		if err != nil {
			return nil, fmt.Errorf("compare package %s: %w", path, err)
		}
		if change != nil {
			report.Changed[path] = change
		}
	}

	if report.Empty() {
		return nil, nil
	}
	return report, nil
}
