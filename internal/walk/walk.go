// Package walk applies the module differ file by file over directory and
// package trees, aggregating per-file results into reports keyed by
// relative path.
package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pydiff/pydiff/internal/cache"
	"github.com/pydiff/pydiff/internal/exclude"
)

// Differ compares trees of Python sources. The zero value works without
// caching or exclusions.
type Differ struct {
	// Cache, when set, stores comparison results keyed by source hashes.
	Cache *cache.Cache
	// Exclude, when set, filters walked files and directories.
	Exclude *exclude.Matcher
}

// FindPython locates Python packages and modules under dir. A directory
// containing __init__.py is a package and is not descended into; .py
// files elsewhere are modules. Returned paths are relative to dir,
// sorted.
func (d *Differ) FindPython(dir string) (packages, modules []string, err error) {
	pending := []string{"."}
	for len(pending) > 0 {
		rel := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		current := filepath.Join(dir, rel)
		if rel != "." {
			if _, err := os.Stat(filepath.Join(current, "__init__.py")); err == nil {
				packages = append(packages, rel)
				continue
			}
		}

		entries, err := os.ReadDir(current)
		if err != nil {
			return nil, nil, fmt.Errorf("read directory %s: %w", current, err)
		}
		for _, entry := range entries {
			entryRel := filepath.Join(rel, entry.Name())
			if rel == "." {
				entryRel = entry.Name()
			}
			if entry.IsDir() {
				if !d.Exclude.SkipDir(entryRel) {
					pending = append(pending, entryRel)
				}
				continue
			}
			if strings.HasSuffix(entry.Name(), ".py") && !d.Exclude.SkipFile(entryRel) {
				modules = append(modules, entryRel)
			}
		}
	}
	sort.Strings(packages)
	sort.Strings(modules)
	return packages, modules, nil
}

// packageModules lists the .py files directly inside a package directory,
// ignoring subpackages.
func (d *Differ) packageModules(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", dir, err)
	}
	var modules []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".py") {
			continue
		}
		if d.Exclude.SkipFile(entry.Name()) {
			continue
		}
		modules = append(modules, entry.Name())
	}
	sort.Strings(modules)
	return modules, nil
}

// requireDir fails with a descriptive error unless path is an existing
// directory.
func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s is not an existing directory: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// partition splits two sorted name sets into removed (old only), common,
// and added (new only).
func partition(old, new []string) (removed, common, added []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, name := range old {
		oldSet[name] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(new))
	for _, name := range new {
		newSet[name] = struct{}{}
	}
	for _, name := range old {
		if _, ok := newSet[name]; ok {
			common = append(common, name)
		} else {
			removed = append(removed, name)
		}
	}
	for _, name := range new {
		if _, ok := oldSet[name]; !ok {
			added = append(added, name)
		}
	}
	return removed, common, added
}

// indent prefixes every line of a rendered block.
func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
