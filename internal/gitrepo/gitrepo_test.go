package gitrepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pydiff/pydiff/internal/walk"
)

// setupRepo creates a repository with two tagged revisions of one module.
func setupRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Skipf("git %v failed: %v: %s", args, err, out)
		}
	}

	run("init", "--quiet")
	if err := os.WriteFile(filepath.Join(dir, "mod.py"), []byte("def f():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "mod.py")
	run("commit", "--quiet", "-m", "first")
	run("tag", "v1")

	if err := os.WriteFile(filepath.Join(dir, "mod.py"), []byte("def f():\n    return 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("commit", "--quiet", "-am", "second")
	run("tag", "v2")

	return dir
}

func TestCompare(t *testing.T) {
	repo := setupRepo(t)

	d := &walk.Differ{}
	report, err := Compare(d, repo, "v1", "v2")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if report.Empty() {
		t.Fatal("Compare() = empty report, want change")
	}
	if !strings.Contains(report.Text(), "Module ``mod.py'' changed:") {
		t.Errorf("Text() missing module change:\n%s", report.Text())
	}
}

func TestCompareIdenticalRevisions(t *testing.T) {
	repo := setupRepo(t)

	report, err := Compare(&walk.Differ{}, repo, "v2", "v2")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if report != nil {
		t.Errorf("Compare() = %+v, want nil", report)
	}
}

func TestCompareBadRevision(t *testing.T) {
	repo := setupRepo(t)

	if _, err := Compare(&walk.Differ{}, repo, "v1", "does-not-exist"); err == nil {
		t.Error("Compare() error = nil for unknown revision")
	}
}
