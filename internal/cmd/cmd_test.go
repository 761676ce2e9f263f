package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pydiff/pydiff/internal/config"
	"github.com/pydiff/pydiff/internal/output"
)

func testSettings(format output.Format) *settings {
	return &settings{
		cfg:       config.DefaultConfig(),
		highlight: output.HighlightQuotes,
		format:    format,
	}
}

func TestEmitReportText(t *testing.T) {
	t.Run("no differences", func(t *testing.T) {
		var buf bytes.Buffer
		s := testSettings(output.FormatText)
		if err := s.emitReport(&buf, "", false); err != nil {
			t.Fatalf("emitReport() error = %v", err)
		}
		if got := buf.String(); got != "No differences found.\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("renders highlight markers", func(t *testing.T) {
		var buf bytes.Buffer
		s := testSettings(output.FormatText)
		if err := s.emitReport(&buf, "Function ``f'' renamed to ``g''", true); err != nil {
			t.Fatalf("emitReport() error = %v", err)
		}
		if got := buf.String(); got != "Function 'f' renamed to 'g'\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})
}

func TestEmitReportJSON(t *testing.T) {
	var buf bytes.Buffer
	s := testSettings(output.FormatJSON)
	if err := s.emitReport(&buf, "Function ``f'' renamed to ``g''", true); err != nil {
		t.Fatalf("emitReport() error = %v", err)
	}

	var doc reportDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if !doc.Changed {
		t.Error("expected changed=true")
	}
	if doc.Report != "Function 'f' renamed to 'g'" {
		t.Errorf("unexpected report: %q", doc.Report)
	}
}

func TestEmitReportYAML(t *testing.T) {
	var buf bytes.Buffer
	s := testSettings(output.FormatYAML)
	if err := s.emitReport(&buf, "New function ``h''", true); err != nil {
		t.Fatalf("emitReport() error = %v", err)
	}

	var doc reportDoc
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}
	if !doc.Changed {
		t.Error("expected changed=true")
	}
	if doc.Report != "New function 'h'" {
		t.Errorf("unexpected report: %q", doc.Report)
	}
}

func TestEmitReportUnchangedStructured(t *testing.T) {
	var buf bytes.Buffer
	s := testSettings(output.FormatJSON)
	if err := s.emitReport(&buf, "", false); err != nil {
		t.Fatalf("emitReport() error = %v", err)
	}

	var doc reportDoc
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if doc.Changed {
		t.Error("expected changed=false")
	}
	if doc.Report != "" {
		t.Errorf("expected empty report, got %q", doc.Report)
	}
}

// runCommand executes the root command with the given args and returns
// captured stdout.
func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return buf.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestModuleCommand(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.py", "def f():\n    pass\n")
	newPath := writeFile(t, dir, "new.py", "def g():\n    pass\n")

	out := runCommand(t, "module", oldPath, newPath, "--highlight", "quotes", "--no-cache")
	if !strings.Contains(out, "Function 'f' renamed to 'g'") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestModuleCommandIdentical(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.py", "x = 1\n")
	newPath := writeFile(t, dir, "new.py", "x = 1\n")

	out := runCommand(t, "module", oldPath, newPath, "--no-cache")
	if !strings.Contains(out, "No differences found.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFunctionCommand(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.py", "def f():\n    return 1\n")
	newPath := writeFile(t, dir, "new.py", "def f():\n    return 2\n")

	out := runCommand(t, "function", oldPath, newPath, "--highlight", "quotes")
	if !strings.Contains(out, "Function 'f' changed implementation:") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestDirCommandJSON(t *testing.T) {
	oldDir := t.TempDir()
	newDir := t.TempDir()
	writeFile(t, oldDir, "app.py", "def f():\n    pass\n")
	writeFile(t, newDir, "app.py", "def f():\n    pass\n\ndef g():\n    pass\n")

	out := runCommand(t, "dir", oldDir, newDir, "--format", "json", "--no-cache")

	var doc reportDoc
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if !doc.Changed {
		t.Error("expected changed=true")
	}
	if !strings.Contains(doc.Report, "New function 'g'") {
		t.Errorf("unexpected report: %q", doc.Report)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldWd)

	out := runCommand(t, "init")
	if !strings.Contains(out, config.ConfigFileName) {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := os.Stat(filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}
