// Package exclude decides which files and directories a tree walk skips.
// Tool and VCS directories are always skipped; additional glob patterns
// come from configuration.
package exclude

import (
	"path/filepath"
)

// skipDirs are directory names never worth descending into.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".pydiff":      {},
	".tox":         {},
	".venv":        {},
	"venv":         {},
	"__pycache__":  {},
	"node_modules": {},
	".mypy_cache":  {},
	".pytest_cache": {},
}

// Matcher matches paths against configured exclude patterns.
type Matcher struct {
	patterns []string
}

// New creates a matcher for the given glob patterns. Patterns are matched
// against both the base name and the full relative path of each entry.
func New(patterns []string) *Matcher {
	return &Matcher{patterns: patterns}
}

// SkipDir reports whether a directory should be skipped. The path is
// relative to the walk root.
func (m *Matcher) SkipDir(rel string) bool {
	base := filepath.Base(rel)
	if _, ok := skipDirs[base]; ok {
		return true
	}
	return m.matches(rel, base)
}

// SkipFile reports whether a file should be skipped. The path is relative
// to the walk root.
func (m *Matcher) SkipFile(rel string) bool {
	if m == nil {
		return false
	}
	return m.matches(rel, filepath.Base(rel))
}

func (m *Matcher) matches(rel, base string) bool {
	if m == nil {
		return false
	}
	for _, pattern := range m.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
