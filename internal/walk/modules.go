package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pydiff/pydiff/internal/cache"
	"github.com/pydiff/pydiff/internal/extract"
	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/output"
	"github.com/pydiff/pydiff/internal/parser"
	"github.com/pydiff/pydiff/internal/semdiff"
)

// ChangedModule is one module present in both trees whose versions
// differ.
type ChangedModule struct {
	// Text is the rendered module diff with highlight markers intact.
	Text string
}

// ModuleSummary counts the top-level declarations of a module.
type ModuleSummary struct {
	Functions int
	Classes   int
}

// describe renders the summary as a " with ..." suffix, or "" when the
// module declares nothing.
func (s ModuleSummary) describe() string {
	var parts []string
	if s.Classes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", s.Classes, output.Pluralize("class", s.Classes)))
	}
	if s.Functions > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", s.Functions, output.Pluralize("function", s.Functions)))
	}
	if len(parts) == 0 {
		return ""
	}
	return " with " + strings.Join(parts, " and ")
}

// ModulesReport aggregates per-module results over a set of compared
// modules, keyed by relative path.
type ModulesReport struct {
	// New lists modules only present in the new tree, sorted.
	New []string
	// Removed lists modules only present in the old tree, sorted.
	Removed []string
	// Changed maps module path to its rendered diff.
	Changed map[string]ChangedModule
	// Summaries describes the declarations of each new and removed
	// module.
	Summaries map[string]ModuleSummary
}

// Empty reports whether no difference was recorded.
func (r *ModulesReport) Empty() bool {
	return r == nil || (len(r.New) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0)
}

// Text renders the report: new modules, removed modules, then changed
// modules with their diffs indented, each group sorted by path.
func (r *ModulesReport) Text() string {
	var lines []string
	for _, path := range r.New {
		lines = append(lines, "New module "+output.HL(path)+r.Summaries[path].describe())
	}
	for _, path := range r.Removed {
		lines = append(lines, "Removed module "+output.HL(path)+r.Summaries[path].describe())
	}
	changed := make([]string, 0, len(r.Changed))
	for path := range r.Changed {
		changed = append(changed, path)
	}
	sort.Strings(changed)
	for _, path := range changed {
		lines = append(lines, fmt.Sprintf("Module %s changed:", output.HL(path)))
		lines = append(lines, indent(r.Changed[path].Text))
	}
	return strings.Join(lines, "\n")
}

// Modules compares the listed module files between two tree roots.
// Returns nil when nothing differs.
func (d *Differ) Modules(oldDir, newDir string, oldModules, newModules []string) (*ModulesReport, error) {
	removed, common, added := partition(oldModules, newModules)

	report := &ModulesReport{
		New:       added,
		Removed:   removed,
		Changed:   make(map[string]ChangedModule),
		Summaries: make(map[string]ModuleSummary),
	}
	for _, path := range added {
		summary, err := summarizeModuleFile(filepath.Join(newDir, path))
		if err != nil {
			return nil, fmt.Errorf("summarize module %s: %w", path, err)
		}
		report.Summaries[path] = summary
	}
	for _, path := range removed {
		summary, err := summarizeModuleFile(filepath.Join(oldDir, path))
		if err != nil {
			return nil, fmt.Errorf("summarize module %s: %w", path, err)
		}
		report.Summaries[path] = summary
	}
	for _, path := range common {
		text, changed, err := d.compareModuleFiles(filepath.Join(oldDir, path), filepath.Join(newDir, path))
		if err != nil {
			return nil, fmt.Errorf("compare module %s: %w", path, err)
		}
		if changed {
			report.Changed[path] = ChangedModule{Text: text}
		}
	}

	if report.Empty() {
		return nil, nil
	}
	return report, nil
}

// summarizeModuleFile parses a module and counts its top-level
// declarations.
func summarizeModuleFile(path string) (ModuleSummary, error) {
	p := parser.New()
	defer p.Close()
	u, err := p.ParseFile(path)
	if err != nil {
		return ModuleSummary{}, err
	}
	defer u.Close()

	return ModuleSummary{
		Functions: len(extract.Functions(u)),
		Classes:   len(extract.Classes(u, imports.Extract(u))),
	}, nil
}

// Module diffs a single module file pair. Returns the rendered diff
// text and whether the versions differ.
func (d *Differ) Module(oldPath, newPath string) (string, bool, error) {
	return d.compareModuleFiles(oldPath, newPath)
}

// compareModuleFiles diffs one module file pair, consulting the cache
// before parsing.
func (d *Differ) compareModuleFiles(oldPath, newPath string) (string, bool, error) {
	oldSource, err := os.ReadFile(oldPath)
	if err != nil {
		return "", false, err
	}
	newSource, err := os.ReadFile(newPath)
	if err != nil {
		return "", false, err
	}

	oldHash := cache.HashSource(oldSource)
	newHash := cache.HashSource(newSource)
	if entry, found, err := d.Cache.Get(oldHash, newHash); err == nil && found {
		return entry.Text, entry.HasDiff, nil
	}

	diff, err := semdiff.DiffSources(oldSource, newSource)
	if err != nil {
		return "", false, err
	}

	entry := cache.Entry{}
	if diff != nil {
		text, err := diff.Text()
		if err != nil {
			return "", false, err
		}
		entry = cache.Entry{HasDiff: true, Text: text}
	}
	if err := d.Cache.Put(oldHash, newHash, entry); err != nil {
		return "", false, err
	}
	return entry.Text, entry.HasDiff, nil
}
