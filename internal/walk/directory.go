package walk

import (
	"strings"
)

// DirectoryReport holds the differences between two directory trees:
// package-level changes and changes of modules outside any package.
type DirectoryReport struct {
	Packages *PackagesReport
	Modules  *ModulesReport
}

// Empty reports whether no difference was recorded.
func (r *DirectoryReport) Empty() bool {
	return r == nil || (r.Packages.Empty() && r.Modules.Empty())
}

// Text renders the report, packages first.
func (r *DirectoryReport) Text() string {
	var sections []string
	if !r.Packages.Empty() {
		sections = append(sections, r.Packages.Text())
	}
	if !r.Modules.Empty() {
		sections = append(sections, r.Modules.Text())
	}
	return strings.Join(sections, "\n")
}

// Directory compares the Python content of two directory trees. Returns
// nil when nothing differs.
func (d *Differ) Directory(oldDir, newDir string) (*DirectoryReport, error) {
	if err := requireDir(oldDir); err != nil {
		return nil, err
	}
	if err := requireDir(newDir); err != nil {
		return nil, err
	}

	oldPackages, oldModules, err := d.FindPython(oldDir)
	if err != nil {
		return nil, err
	}
	newPackages, newModules, err := d.FindPython(newDir)
	if err != nil {
		return nil, err
	}

	packages, err := d.comparePackages(oldDir, newDir, oldPackages, newPackages)
	if err != nil {
		return nil, err
	}
	modules, err := d.Modules(oldDir, newDir, oldModules, newModules)
	if err != nil {
		return nil, err
	}

	if packages == nil && modules == nil {
		return nil, nil
	}
	return &DirectoryReport{Packages: packages, Modules: modules}, nil
}
