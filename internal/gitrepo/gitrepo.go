// Package gitrepo compares two revisions of a git repository by checking
// both out into temporary directories and applying the directory differ.
package gitrepo

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pydiff/pydiff/internal/walk"
)

// Compare clones the repository, checks out the two revisions and
// compares the resulting trees. The temporary checkout is removed on all
// exit paths. Returns nil when the revisions do not differ.
func Compare(d *walk.Differ, repository, oldRev, newRev string) (*walk.DirectoryReport, error) {
	tmp, err := os.MkdirTemp("", "pydiff-")
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	source := filepath.Join(tmp, "source")
	oldDir := filepath.Join(tmp, "old")
	newDir := filepath.Join(tmp, "new")

	if err := git("", "clone", "--quiet", repository, source); err != nil {
		return nil, err
	}

	if err := git(source, "checkout", "--quiet", oldRev); err != nil {
		return nil, err
	}
	if err := copyTree(source, oldDir); err != nil {
		return nil, err
	}

	if err := git(source, "checkout", "--quiet", newRev); err != nil {
		return nil, err
	}
	if err := copyTree(source, newDir); err != nil {
		return nil, err
	}

	return d.Directory(oldDir, newDir)
}

// git runs one git command, surfacing stderr in the returned error.
func git(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, detail)
		}
		return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// copyTree copies a checkout into dst, leaving the .git directory behind.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == ".git" {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dst, rel), content, 0o644)
	})
}
