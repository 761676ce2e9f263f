package imports

import (
	"testing"

	"github.com/pydiff/pydiff/internal/parser"
)

func parseUnit(t *testing.T, source string) *parser.Unit {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)
	unit, err := p.Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	t.Cleanup(unit.Close)
	return unit
}

func extractModel(t *testing.T, source string) *Model {
	t.Helper()
	return Extract(parseUnit(t, source))
}

func TestCanonicalNames(t *testing.T) {
	tests := []struct {
		name      string
		imported  ImportedName
		local     string
		canonical string
	}{
		{"direct", NewDirect("os.path", ""), "os.path", "os.path"},
		{"direct aliased", NewDirect("os.path", "p"), "p", "os.path"},
		{"from", NewFrom("os.path", "join", ""), "join", "os.path.join"},
		{"from aliased", NewFrom("os.path", "join", "j"), "j", "os.path.join"},
		{"relative", NewFrom("", "helper", ""), "helper", "helper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.imported.Local != tt.local {
				t.Errorf("Local = %q, want %q", tt.imported.Local, tt.local)
			}
			if tt.imported.Canonical != tt.canonical {
				t.Errorf("Canonical = %q, want %q", tt.imported.Canonical, tt.canonical)
			}
		})
	}
}

func TestCanonicalExpr(t *testing.T) {
	imported := NewFrom("os.path", "join", "j")
	want := "(attribute (attribute (identifier os) (identifier path)) (identifier join))"
	if got := imported.CanonicalExpr(); got != want {
		t.Errorf("CanonicalExpr() = %q, want %q", got, want)
	}
}

func TestExtract(t *testing.T) {
	m := extractModel(t, `
import os
import os.path as p
from os import path, sep as separator
from collections import OrderedDict
`)

	tests := []struct {
		local     string
		canonical string
	}{
		{"os", "os"},
		{"p", "os.path"},
		{"path", "os.path"},
		{"separator", "os.sep"},
		{"OrderedDict", "collections.OrderedDict"},
	}
	for _, tt := range tests {
		imported, ok := m.Lookup(tt.local)
		if !ok {
			t.Errorf("Lookup(%q) = not found", tt.local)
			continue
		}
		if imported.Canonical != tt.canonical {
			t.Errorf("Lookup(%q).Canonical = %q, want %q", tt.local, imported.Canonical, tt.canonical)
		}
	}

	modules := m.FromModules()
	if len(modules) != 2 || modules[0] != "collections" || modules[1] != "os" {
		t.Errorf("FromModules() = %v, want [collections os]", modules)
	}
}

func TestExtractShadowing(t *testing.T) {
	m := extractModel(t, "from json import load\nfrom pickle import load\n")

	imported, ok := m.Lookup("load")
	if !ok {
		t.Fatal("Lookup(load) = not found")
	}
	if imported.Canonical != "pickle.load" {
		t.Errorf("shadowed Canonical = %q, want %q", imported.Canonical, "pickle.load")
	}
}

func TestExtractRelativeImport(t *testing.T) {
	m := extractModel(t, "from . import sibling\nfrom .helpers import tool\n")

	if imported, ok := m.Lookup("sibling"); !ok || imported.Canonical != "sibling" {
		t.Errorf("Lookup(sibling) = %+v, %v, want canonical %q", imported, ok, "sibling")
	}
	if imported, ok := m.Lookup("tool"); !ok || imported.Canonical != "helpers.tool" {
		t.Errorf("Lookup(tool) = %+v, %v, want canonical %q", imported, ok, "helpers.tool")
	}
	// "from . import x" contributes no canonical module
	for _, module := range m.FromModules() {
		if module == "" {
			t.Error("FromModules() contains empty module")
		}
	}
}

func TestExtractNestedImports(t *testing.T) {
	m := extractModel(t, "def f():\n    import json\n    return json\n")

	if !m.Contains("json") {
		t.Error("Contains(json) = false for nested import")
	}
}

func TestCompareIdentical(t *testing.T) {
	old := extractModel(t, "import os\nfrom json import load\n")
	new := extractModel(t, "import os\nfrom json import load\n")

	if d := Compare(old, new); d != nil {
		t.Errorf("Compare() = %+v, want nil", d)
	}
}

func TestCompare(t *testing.T) {
	old := extractModel(t, "import os\nfrom json import load, dump\n")
	new := extractModel(t, "import sys\nfrom json import load\nfrom pickle import loads\n")

	d := Compare(old, new)
	if d == nil {
		t.Fatal("Compare() = nil, want diff")
	}

	if names := localNames(d.New); len(names) != 1 || names[0] != "sys" {
		t.Errorf("New = %v, want [sys]", names)
	}
	if names := localNames(d.Removed); len(names) != 1 || names[0] != "os" {
		t.Errorf("Removed = %v, want [os]", names)
	}
	if names := localNames(d.RemovedFrom["json"]); len(names) != 1 || names[0] != "dump" {
		t.Errorf(`RemovedFrom["json"] = %v, want [dump]`, names)
	}
	if names := localNames(d.NewFrom["pickle"]); len(names) != 1 || names[0] != "loads" {
		t.Errorf(`NewFrom["pickle"] = %v, want [loads]`, names)
	}
	if len(d.NewFromModules) != 1 || d.NewFromModules[0] != "pickle" {
		t.Errorf("NewFromModules = %v, want [pickle]", d.NewFromModules)
	}
	if len(d.RemovedFromModules) != 0 {
		t.Errorf("RemovedFromModules = %v, want []", d.RemovedFromModules)
	}
}

func TestCompareText(t *testing.T) {
	old := extractModel(t, "import os\n")
	new := extractModel(t, "from pickle import loads\n")

	d := Compare(old, new)
	if d == nil {
		t.Fatal("Compare() = nil, want diff")
	}
	want := "Removed import of package ``os''\n" +
		"New imported ``loads'' from new ``pickle''"
	if got := d.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestReduceUpgrade(t *testing.T) {
	old := extractModel(t, "from pathlib import Path\n")
	new := extractModel(t, "import pathlib\n")

	d := Compare(old, new)
	Reduce(d)
	d = d.Simplify()
	if d == nil {
		t.Fatal("diff = nil after reduction, want upgrade record")
	}

	if len(d.Upgraded) != 1 {
		t.Fatalf("len(Upgraded) = %d, want 1", len(d.Upgraded))
	}
	up := d.Upgraded[0]
	if up.Package != "pathlib" {
		t.Errorf("Upgraded.Package = %q, want %q", up.Package, "pathlib")
	}
	if len(up.Names) != 1 || up.Names[0] != "Path" {
		t.Errorf("Upgraded.Names = %v, want [Path]", up.Names)
	}

	// the raw findings must not be double-reported
	if len(d.New) != 0 {
		t.Errorf("New = %v, want []", d.New)
	}
	if len(d.RemovedFrom) != 0 {
		t.Errorf("RemovedFrom = %v, want empty", d.RemovedFrom)
	}
	if len(d.RemovedFromModules) != 0 {
		t.Errorf("RemovedFromModules = %v, want []", d.RemovedFromModules)
	}

	want := "New imported package ``pathlib'' (previously, only ``Path'' was imported from ``pathlib'')"
	if got := d.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestReduceDowngrade(t *testing.T) {
	old := extractModel(t, "import pathlib\n")
	new := extractModel(t, "from pathlib import Path, PurePath\n")

	d := Compare(old, new)
	Reduce(d)
	d = d.Simplify()
	if d == nil {
		t.Fatal("diff = nil after reduction, want downgrade record")
	}

	if len(d.Downgraded) != 1 {
		t.Fatalf("len(Downgraded) = %d, want 1", len(d.Downgraded))
	}
	down := d.Downgraded[0]
	if down.Package != "pathlib" {
		t.Errorf("Downgraded.Package = %q, want %q", down.Package, "pathlib")
	}
	if len(down.Names) != 2 {
		t.Errorf("Downgraded.Names = %v, want [Path PurePath]", down.Names)
	}
	if len(d.Removed) != 0 || len(d.NewFrom) != 0 || len(d.NewFromModules) != 0 {
		t.Errorf("raw findings remain after reduction: %+v", d)
	}
}

func TestReduceFixedPoint(t *testing.T) {
	old := extractModel(t, "from pathlib import Path\nfrom json import load\n")
	new := extractModel(t, "import pathlib\nimport json\n")

	d := Compare(old, new)
	Reduce(d)
	d = d.Simplify()
	if d == nil {
		t.Fatal("diff = nil after reduction")
	}
	if len(d.Upgraded) != 2 {
		t.Errorf("len(Upgraded) = %d, want 2", len(d.Upgraded))
	}
	if len(d.New) != 0 || len(d.RemovedFrom) != 0 {
		t.Errorf("raw findings remain: %+v", d)
	}
}

func TestReduceLeavesUnrelatedChanges(t *testing.T) {
	old := extractModel(t, "from pathlib import Path\nimport os\n")
	new := extractModel(t, "import pathlib\nimport sys\n")

	d := Compare(old, new)
	Reduce(d)
	d = d.Simplify()
	if d == nil {
		t.Fatal("diff = nil after reduction")
	}
	if len(d.Upgraded) != 1 {
		t.Errorf("len(Upgraded) = %d, want 1", len(d.Upgraded))
	}
	if names := localNames(d.New); len(names) != 1 || names[0] != "sys" {
		t.Errorf("New = %v, want [sys]", names)
	}
	if names := localNames(d.Removed); len(names) != 1 || names[0] != "os" {
		t.Errorf("Removed = %v, want [os]", names)
	}
}

func TestSimplifyEmpty(t *testing.T) {
	d := &Diff{
		NewFrom:     map[string][]ImportedName{"os": {}},
		RemovedFrom: map[string][]ImportedName{},
	}
	if got := d.Simplify(); got != nil {
		t.Errorf("Simplify() = %+v, want nil", got)
	}
}
