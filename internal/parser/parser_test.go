package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	p := New()
	defer p.Close()

	unit, err := p.Parse([]byte("def f():\n    pass\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer unit.Close()

	if unit.Root.Type() != NodeModule {
		t.Errorf("root type = %q, want %q", unit.Root.Type(), NodeModule)
	}
	stmts := unit.Statements()
	if len(stmts) != 1 {
		t.Fatalf("len(Statements()) = %d, want 1", len(stmts))
	}
	if stmts[0].Type() != NodeFunctionDef {
		t.Errorf("statement type = %q, want %q", stmts[0].Type(), NodeFunctionDef)
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("def f(:\n"))
	if err == nil {
		t.Fatal("Parse() error = nil, want ParseError")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("Parse() error type = %T, want *ParseError", err)
	}
}

func TestParseFile(t *testing.T) {
	p := New()
	defer p.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	unit, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	defer unit.Close()
	if unit.FilePath != path {
		t.Errorf("FilePath = %q, want %q", unit.FilePath, path)
	}

	if _, err := p.ParseFile(filepath.Join(dir, "missing.py")); err == nil {
		t.Error("ParseFile() on missing file: error = nil, want FileReadError")
	}
}

func TestStatementsSkipComments(t *testing.T) {
	p := New()
	defer p.Close()

	unit, err := p.Parse([]byte("# leading comment\nx = 1\n# trailing comment\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer unit.Close()

	stmts := unit.Statements()
	if len(stmts) != 1 {
		t.Errorf("len(Statements()) = %d, want 1", len(stmts))
	}
}

func TestDumpIgnoresFormatting(t *testing.T) {
	p := New()
	defer p.Close()

	first, err := p.Parse([]byte("x = f( 1,  2 )\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := p.Parse([]byte("x = f(1, 2)\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	a := Dump(first.Statements()[0], first.Source)
	b := Dump(second.Statements()[0], second.Source)
	if a != b {
		t.Errorf("dumps differ:\n%s\n%s", a, b)
	}
}

func TestDumpDistinguishesOperators(t *testing.T) {
	p := New()
	defer p.Close()

	first, err := p.Parse([]byte("x = a + b\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := p.Parse([]byte("x = a - b\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	a := Dump(first.Statements()[0], first.Source)
	b := Dump(second.Statements()[0], second.Source)
	if a == b {
		t.Errorf("dumps equal for different operators:\n%s", a)
	}
}

func TestDumpDistinguishesLiterals(t *testing.T) {
	p := New()
	defer p.Close()

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"integers", "x = 1\n", "x = 2\n"},
		{"strings", `x = "a"` + "\n", `x = "b"` + "\n"},
		{"booleans", "x = True\n", "x = False\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := p.Parse([]byte(tt.old))
			if err != nil {
				t.Fatal(err)
			}
			defer first.Close()
			second, err := p.Parse([]byte(tt.new))
			if err != nil {
				t.Fatal(err)
			}
			defer second.Close()

			a := Dump(first.Statements()[0], first.Source)
			b := Dump(second.Statements()[0], second.Source)
			if a == b {
				t.Errorf("dumps equal for different literals:\n%s", a)
			}
		})
	}
}

func TestDumpChainCollapse(t *testing.T) {
	p := New()
	defer p.Close()

	// A rewritten alias must compare equal to hand-written dotted access.
	aliased, err := p.Parse([]byte("x = pathy.join(a)\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer aliased.Close()
	written, err := p.Parse([]byte("x = os.path.join(a)\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer written.Close()

	resolve := func(local string) (string, bool) {
		if local == "pathy" {
			return "os.path", true
		}
		return "", false
	}

	a := DumpWith(aliased.Statements()[0], aliased.Source, DumpOptions{Resolve: resolve})
	b := Dump(written.Statements()[0], written.Source)
	if a != b {
		t.Errorf("canonical dump does not match hand-written access:\n%s\n%s", a, b)
	}
}

func TestDumpWithRecordsReferences(t *testing.T) {
	p := New()
	defer p.Close()

	unit, err := p.Parse([]byte("x = path.join(a)\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer unit.Close()

	refs := map[string]string{}
	subs := map[string]string{}
	DumpWith(unit.Statements()[0], unit.Source, DumpOptions{
		Resolve: func(local string) (string, bool) {
			if local == "path" {
				return "os.path", true
			}
			return "", false
		},
		OnReference:    func(canonical, local string) { refs[canonical] = local },
		OnSubstitution: func(local, canonical string) { subs[local] = canonical },
	})

	if got := refs["os.path"]; got != "path" {
		t.Errorf(`refs["os.path"] = %q, want "path"`, got)
	}
	if got := refs["os.path.join"]; got != "path.join" {
		t.Errorf(`refs["os.path.join"] = %q, want "path.join"`, got)
	}
	if got := subs["path"]; got != "os.path" {
		t.Errorf(`subs["path"] = %q, want "os.path"`, got)
	}
}

func TestDottedPath(t *testing.T) {
	p := New()
	defer p.Close()

	unit, err := p.Parse([]byte("x = os.path.join\ny = f().attr\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer unit.Close()

	stmts := unit.Statements()
	chain := stmts[0].NamedChild(0).ChildByFieldName("right")
	if path, ok := DottedPath(chain, unit.Source); !ok || path != "os.path.join" {
		t.Errorf("DottedPath() = %q, %v, want %q, true", path, ok, "os.path.join")
	}
	impure := stmts[1].NamedChild(0).ChildByFieldName("right")
	if _, ok := DottedPath(impure, unit.Source); ok {
		t.Error("DottedPath() on call attribute = ok, want not ok")
	}
}
