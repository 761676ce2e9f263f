package semdiff

import (
	"strings"

	"github.com/pydiff/pydiff/internal/extract"
	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/parser"
)

// ModuleDiff holds the differences between two versions of a module.
// Absent sections are nil.
type ModuleDiff struct {
	Imports   *imports.Diff
	Classes   *ClassesDiff
	Functions *FunctionsDiff
}

// Empty reports whether no difference was recorded.
func (d *ModuleDiff) Empty() bool {
	return d == nil || (d.Imports.Empty() && d.Classes.Empty() && d.Functions.Empty())
}

// Simplify prunes sections that became empty after manipulation.
// Returns nil when nothing remains.
func (d *ModuleDiff) Simplify() *ModuleDiff {
	if d == nil {
		return nil
	}
	d.Imports = d.Imports.Simplify()
	d.Classes = d.Classes.Simplify()
	d.Functions = d.Functions.Simplify()
	if d.Empty() {
		return nil
	}
	return d
}

// Text renders the diff: imports, classes, then functions.
func (d *ModuleDiff) Text() (string, error) {
	var sections []string
	if !d.Imports.Empty() {
		sections = append(sections, d.Imports.Text())
	}
	if !d.Classes.Empty() {
		classes, err := d.Classes.Text()
		if err != nil {
			return "", err
		}
		sections = append(sections, classes)
	}
	if !d.Functions.Empty() {
		sections = append(sections, d.Functions.Text())
	}
	return strings.Join(sections, "\n"), nil
}

// DiffModules compares two parsed modules. Returns nil when they are
// semantically identical.
func DiffModules(old, new *parser.Unit) *ModuleDiff {
	oldModel := imports.Extract(old)
	newModel := imports.Extract(new)

	d := &ModuleDiff{}
	if importsDiff := imports.Compare(oldModel, newModel); importsDiff != nil {
		imports.Reduce(importsDiff)
		d.Imports = importsDiff.Simplify()
	}
	d.Classes = DiffClasses(extract.Classes(old, oldModel), extract.Classes(new, newModel), oldModel, newModel)
	d.Functions = diffFunctionMaps(extract.Functions(old), extract.Functions(new), oldModel, newModel)

	if d.Empty() {
		return nil
	}
	return d
}

// DiffSources parses and compares two module sources.
func DiffSources(oldSource, newSource []byte) (*ModuleDiff, error) {
	p := parser.New()
	defer p.Close()

	old, err := p.Parse(oldSource)
	if err != nil {
		return nil, err
	}
	defer old.Close()

	new, err := p.Parse(newSource)
	if err != nil {
		return nil, err
	}
	defer new.Close()

	return DiffModules(old, new), nil
}

// DiffFunctionSources parses two sources each expected to hold exactly
// one top-level function and compares them. Import models are extracted
// from the sources themselves.
func DiffFunctionSources(oldSource, newSource []byte) (*FunctionDiff, error) {
	p := parser.New()
	defer p.Close()

	old, err := p.Parse(oldSource)
	if err != nil {
		return nil, err
	}
	defer old.Close()

	new, err := p.Parse(newSource)
	if err != nil {
		return nil, err
	}
	defer new.Close()

	oldFn, err := extract.SingleFunction(old)
	if err != nil {
		return nil, err
	}
	newFn, err := extract.SingleFunction(new)
	if err != nil {
		return nil, err
	}

	return DiffFunction(oldFn, newFn, imports.Extract(old), imports.Extract(new)), nil
}
