package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pydiff/pydiff/internal/imports"
	"github.com/pydiff/pydiff/internal/parser"
)

func parseUnit(t *testing.T, source string) *parser.Unit {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)
	u, err := p.Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	t.Cleanup(u.Close)
	return u
}

func TestFunctions(t *testing.T) {
	u := parseUnit(t, `
def f():
    pass

def _private():
    pass

class K:
    def method(self):
        pass

@decorator
def decorated():
    pass
`)
	fns := Functions(u)

	want := []string{"_private", "decorated", "f"}
	var got []string
	for name := range fns {
		got = append(got, name)
	}
	if len(got) != len(want) {
		t.Fatalf("Functions() names = %v, want %v", got, want)
	}
	for _, name := range want {
		if _, ok := fns[name]; !ok {
			t.Errorf("Functions() missing %q", name)
		}
	}
	if _, ok := fns["method"]; ok {
		t.Error("Functions() includes class method")
	}
}

func TestFunctionsPropertyFlag(t *testing.T) {
	u := parseUnit(t, `
@property
def p():
    return 1

@functools.wraps(f)
def wrapped():
    pass
`)
	fns := Functions(u)
	if !fns["p"].Property {
		t.Error("bare property decorator not flagged")
	}
	if fns["wrapped"].Property {
		t.Error("non-property decorator flagged as property")
	}
}

func TestFunctionBody(t *testing.T) {
	u := parseUnit(t, "def f():\n    a = 1\n    # comment\n    return a\n")
	f := Functions(u)["f"]
	if got := len(f.Body()); got != 2 {
		t.Errorf("len(Body()) = %d, want 2", got)
	}
}

func TestSingleFunction(t *testing.T) {
	u := parseUnit(t, "def f(x):\n    return x\n")
	f, err := SingleFunction(u)
	if err != nil {
		t.Fatalf("SingleFunction() error = %v", err)
	}
	if f.Name != "f" {
		t.Errorf("Name = %q, want %q", f.Name, "f")
	}
}

func TestSingleFunctionErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"two statements", "def f():\n    pass\nx = 1\n"},
		{"not a function", "x = 1\n"},
		{"class", "class K:\n    pass\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := parseUnit(t, tt.source)
			if _, err := SingleFunction(u); !errors.Is(err, ErrNotOneFunction) {
				t.Errorf("SingleFunction() error = %v, want ErrNotOneFunction", err)
			}
		})
	}
}

func TestClasses(t *testing.T) {
	u := parseUnit(t, `
from enum import Enum

class Plain:
    pass

class Color(Enum):
    def shade(self):
        pass

class Derived(Plain):
    pass

@register
class Decorated:
    pass
`)
	model := imports.Extract(u)
	classes := Classes(u, model)

	if len(classes) != 4 {
		t.Fatalf("len(Classes()) = %d, want 4", len(classes))
	}
	if got := classes["Color"].Bases; len(got) != 1 || !got[0].Imported || got[0].Name != "Enum" {
		t.Errorf("Color bases = %+v, want imported Enum", got)
	}
	if got := classes["Derived"].Bases; len(got) != 1 || got[0].Imported || got[0].Name != "Plain" {
		t.Errorf("Derived bases = %+v, want local Plain", got)
	}
	if _, ok := classes["Decorated"]; !ok {
		t.Error("decorated class not extracted")
	}
	if got := classes["Color"].MethodNames(); !reflect.DeepEqual(got, []string{"shade"}) {
		t.Errorf("Color methods = %v, want [shade]", got)
	}
}

func TestClassesKeywordBaseSkipped(t *testing.T) {
	u := parseUnit(t, "class K(Base, metaclass=Meta):\n    pass\n")
	classes := Classes(u, imports.Extract(u))
	bases := classes["K"].Bases
	if len(bases) != 1 || bases[0].Name != "Base" {
		t.Errorf("bases = %+v, want only Base", bases)
	}
}

func TestClassMethodCounts(t *testing.T) {
	u := parseUnit(t, `
class K:
    def __init__(self):
        pass

    def _helper(self):
        pass

    def public(self):
        pass
`)
	k := Classes(u, imports.Extract(u))["K"]
	if got := k.PublicMethods(); got != 1 {
		t.Errorf("PublicMethods() = %d, want 1", got)
	}
	if got := k.PrivateMethods(); got != 2 {
		t.Errorf("PrivateMethods() = %d, want 2", got)
	}
}

func TestClassAttributes(t *testing.T) {
	u := parseUnit(t, `
class K:
    def __init__(self, size):
        self.size = size
        self.name, self.kind = "k", "class"
        self.count: int = 0
        local = 1

    def resize(this, size):
        this.size = size
        this.resized = True

    def helper(self):
        other.attr = 1
`)
	k := Classes(u, imports.Extract(u))["K"]
	want := []string{"count", "kind", "name", "resized", "size"}
	if !reflect.DeepEqual(k.Attributes, want) {
		t.Errorf("Attributes = %v, want %v", k.Attributes, want)
	}
}

func TestClassAttributesNoParameters(t *testing.T) {
	u := parseUnit(t, "class K:\n    @staticmethod\n    def s():\n        obj.x = 1\n")
	k := Classes(u, imports.Extract(u))["K"]
	if len(k.Attributes) != 0 {
		t.Errorf("Attributes = %v, want none", k.Attributes)
	}
}
