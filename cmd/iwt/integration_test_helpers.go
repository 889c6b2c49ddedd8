//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/issuewt/iwt/internal/log"
	"github.com/issuewt/iwt/internal/output"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// testContext returns a context wired with a logger and printer writing to
// the returned buffers (stderr-equivalent, stdout-equivalent).
func testContext(t *testing.T) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var logBuf, outBuf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&logBuf, false, false))
	ctx = output.WithPrinter(ctx, &outBuf)
	return ctx, &logBuf, &outBuf
}

// runGitCommand runs a command in dir and returns its output.
func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to run %v: %v\n%s", args, err, out)
	}
	return string(out)
}

// setupTestRepo creates a git repo with an initial commit in dir/name and a
// fake github origin so owner/repo inference works.
// Returns the absolute path to the created repo (with symlinks resolved).
func setupTestRepo(t *testing.T, dir, name string) string {
	t.Helper()

	dir = resolvePath(t, dir)

	repoPath := filepath.Join(dir, name)
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}

	runGitCommand(t, repoPath, "git", "init", "-b", "main")
	runGitCommand(t, repoPath, "git", "config", "user.email", "test@test.com")
	runGitCommand(t, repoPath, "git", "config", "user.name", "Test User")
	runGitCommand(t, repoPath, "git", "config", "commit.gpgsign", "false")

	readmePath := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readmePath, []byte("# "+name+"\n"), 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	runGitCommand(t, repoPath, "git", "add", "README.md")
	runGitCommand(t, repoPath, "git", "commit", "-m", "Initial commit")

	runGitCommand(t, repoPath, "git", "remote", "add", "origin", "https://github.com/test/"+name+".git")

	return repoPath
}

// setupTestRepoWithLocalOrigin creates a git repo backed by a local bare
// origin, so fetches actually succeed. Returns the working repo path.
func setupTestRepoWithLocalOrigin(t *testing.T, dir, name string) string {
	t.Helper()

	dir = resolvePath(t, dir)

	barePath := filepath.Join(dir, name+".git")
	if err := os.MkdirAll(barePath, 0755); err != nil {
		t.Fatalf("failed to create bare repo dir: %v", err)
	}
	runGitCommand(t, barePath, "git", "init", "--bare", "-b", "main")

	repoPath := setupTestRepo(t, dir, name)
	runGitCommand(t, repoPath, "git", "remote", "set-url", "origin", barePath)
	runGitCommand(t, repoPath, "git", "push", "-u", "origin", "main")

	return repoPath
}

// createBranch creates a branch without checking it out.
func createBranch(t *testing.T, repoPath, branch string) {
	t.Helper()
	runGitCommand(t, repoPath, "git", "branch", branch)
}

// verifyWorktreeWorks checks that git status works in the worktree.
func verifyWorktreeWorks(t *testing.T, worktreePath string) {
	t.Helper()

	cmd := exec.Command("git", "status")
	cmd.Dir = worktreePath
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Errorf("worktree %s is broken: git status failed: %v\n%s", worktreePath, err, out)
	}
}

// verifyBranchExists verifies a branch exists in the repo.
func verifyBranchExists(t *testing.T, repoPath, branch string) {
	t.Helper()
	out := runGitCommand(t, repoPath, "git", "branch", "--list", branch)
	if !strings.Contains(out, branch) {
		t.Errorf("branch %s should exist in repo", branch)
	}
}
