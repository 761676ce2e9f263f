// Package semdiff compares two versions of parsed Python code and reports
// the differences in terms of declarations and behavior.
//
// Unlike line-level diffs, the comparison understands structure: it
// distinguishes renames from behavioral changes, and recognizes when two
// statements only differ in which local alias they use for the same
// imported entity.
package semdiff

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/parser"
)

// AliasChange records that the old statement referred to an imported
// entity under one local name and the new statement refers to the same
// entity under another.
type AliasChange struct {
	// Old is the local name used in the old statement.
	Old string
	// New is the local name used in the new statement.
	New string
}

// StatementDiff describes the difference between two statements that were
// not structurally identical.
type StatementDiff struct {
	// Aliases lists alias-only divergences, sorted. Empty when no
	// alias-equivalence explanation was found.
	Aliases []AliasChange
}

// Specific reports whether at least one concrete cause for the difference
// was identified.
func (d *StatementDiff) Specific() bool {
	return len(d.Aliases) > 0
}

// SemanticallyDifferent reports whether the difference affects behavior.
// A difference explained entirely by import aliasing does not.
func (d *StatementDiff) SemanticallyDifferent() bool {
	return len(d.Aliases) == 0
}

// CompareStatements compares two statements under their respective import
// models. It returns nil when the statements are structurally identical.
// Otherwise both statements are canonicalized, replacing every imported
// local name with its fully qualified form. If the canonical forms match,
// the difference is aliasing only and the substitutions are matched
// against the opposite side's reference table to name the aliases
// involved.
func CompareStatements(oldStmt *sitter.Node, oldSource []byte, newStmt *sitter.Node, newSource []byte, oldModel, newModel *imports.Model) *StatementDiff {
	if parser.Dump(oldStmt, oldSource) == parser.Dump(newStmt, newSource) {
		return nil
	}

	oldCanon, oldRefs, oldSubs := canonicalize(oldStmt, oldSource, oldModel)
	newCanon, newRefs, newSubs := canonicalize(newStmt, newSource, newModel)

	diff := &StatementDiff{}
	if oldCanon != newCanon {
		return diff
	}

	seen := make(map[AliasChange]struct{})
	for oldLocal, canonical := range oldSubs {
		if newLocal, ok := newRefs[canonical]; ok {
			seen[AliasChange{Old: oldLocal, New: newLocal}] = struct{}{}
		}
	}
	for newLocal, canonical := range newSubs {
		if oldLocal, ok := oldRefs[canonical]; ok {
			seen[AliasChange{Old: oldLocal, New: newLocal}] = struct{}{}
		}
	}

	for change := range seen {
		diff.Aliases = append(diff.Aliases, change)
	}
	sort.Slice(diff.Aliases, func(i, j int) bool {
		if diff.Aliases[i].Old != diff.Aliases[j].Old {
			return diff.Aliases[i].Old < diff.Aliases[j].Old
		}
		return diff.Aliases[i].New < diff.Aliases[j].New
	})
	return diff
}

// canonicalize dumps a statement with imported names fully qualified.
// It returns the canonical dump, the canonical-to-local reference table
// covering every dotted prefix encountered, and the local-to-canonical
// substitutions actually performed.
func canonicalize(stmt *sitter.Node, source []byte, model *imports.Model) (string, map[string]string, map[string]string) {
	refs := make(map[string]string)
	subs := make(map[string]string)
	canon := parser.DumpWith(stmt, source, parser.DumpOptions{
		Resolve: model.Resolve,
		OnReference: func(canonical, local string) {
			refs[canonical] = local
		},
		OnSubstitution: func(local, canonical string) {
			subs[local] = canonical
		},
	})
	return canon, refs, subs
}
