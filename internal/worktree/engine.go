package worktree

import (
	"context"

	"github.com/issuewt/iwt/internal/git"
)

// GitEngine implements Engine against a real repository using the git binary.
type GitEngine struct {
	RepoRoot string
}

var _ Engine = (*GitEngine)(nil)

func (e *GitEngine) BranchExists(ctx context.Context, branch string) bool {
	return git.BranchExists(ctx, e.RepoRoot, branch)
}

func (e *GitEngine) Worktrees(ctx context.Context) ([]Info, error) {
	wts, err := git.ListWorktrees(ctx, e.RepoRoot)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(wts))
	for _, wt := range wts {
		infos = append(infos, Info{Path: wt.Path, Branch: wt.Branch})
	}
	return infos, nil
}

func (e *GitEngine) AddWorktree(ctx context.Context, path, branch string) error {
	return git.AddWorktree(ctx, e.RepoRoot, path, branch)
}

func (e *GitEngine) AddWorktreeBranch(ctx context.Context, path, branch, baseRef string) error {
	return git.AddWorktreeNewBranch(ctx, e.RepoRoot, path, branch, baseRef)
}

// ResolveBaseRef prefers the remote-tracking ref so fresh branches start from
// the fetched state, falling back to the local branch.
func (e *GitEngine) ResolveBaseRef(ctx context.Context, base string) string {
	if git.RefExists(ctx, e.RepoRoot, "refs/remotes/origin/"+base) {
		return "origin/" + base
	}
	return base
}

func (e *GitEngine) FetchBase(ctx context.Context, base string) error {
	return git.Fetch(ctx, e.RepoRoot, base)
}
