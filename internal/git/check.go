package git

import (
	"context"
	"fmt"
	"os/exec"
)

// ErrGitNotFound indicates git is not installed or not in PATH.
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that git is available in PATH.
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// ValidateBranchName checks the branch against git's ref-format rules
// (no spaces, no "..", no "~" or "^", and so on).
func ValidateBranchName(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "check-ref-format", "--branch", branch); err != nil {
		return fmt.Errorf("invalid branch name %q: not a valid git ref", branch)
	}
	return nil
}
