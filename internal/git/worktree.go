package git

import (
	"context"
	"fmt"
	"strings"
)

// WorktreeInfo contains basic worktree information from git worktree list.
type WorktreeInfo struct {
	Path   string
	Branch string // "(detached)" for detached HEAD
}

// ListWorktrees returns all registered worktrees for a repository using
// git worktree list --porcelain.
func ListWorktrees(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	output, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %v", err)
	}
	return parseWorktreeList(string(output)), nil
}

// parseWorktreeList parses `git worktree list --porcelain` output.
// Each entry starts with "worktree <path>" and may carry a
// "branch refs/heads/<name>" line or a bare "detached" line.
func parseWorktreeList(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo
	var current WorktreeInfo

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if current.Path != "" {
				worktrees = append(worktrees, current)
			}
			current = WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "detached":
			current.Branch = "(detached)"
		}
	}
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}
	return worktrees
}

// AddWorktree attaches a new worktree at path checking out an existing branch.
func AddWorktree(ctx context.Context, repoPath, path, branch string) error {
	return runGit(ctx, repoPath, "worktree", "add", path, branch)
}

// AddWorktreeNewBranch creates branch from baseRef and attaches a new
// worktree at path checked out on it.
func AddWorktreeNewBranch(ctx context.Context, repoPath, path, branch, baseRef string) error {
	return runGit(ctx, repoPath, "worktree", "add", "-b", branch, path, baseRef)
}
