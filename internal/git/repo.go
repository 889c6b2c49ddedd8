package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RepoRoot returns the top-level directory of the repository containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	output, err := outputGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %v", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// OriginURL gets the origin remote URL for a repository.
func OriginURL(ctx context.Context, repoPath string) (string, error) {
	output, err := outputGit(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin URL: %v", err)
	}
	return strings.TrimSpace(string(output)), nil
}

var (
	githubHTTPS = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	githubSSH   = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
)

// OwnerRepoFromURL extracts "owner/repo" from a github.com remote URL.
// Returns false for non-GitHub remotes; bare issue numbers cannot be
// resolved against hosts we don't recognize.
func OwnerRepoFromURL(url string) (string, bool) {
	if m := githubHTTPS.FindStringSubmatch(url); m != nil {
		return m[1] + "/" + m[2], true
	}
	if m := githubSSH.FindStringSubmatch(url); m != nil {
		return m[1] + "/" + m[2], true
	}
	return "", false
}

// OwnerRepoFromRemote resolves "owner/repo" from the repository's origin
// remote. Returns an error when there is no origin or it does not point at a
// recognized host.
func OwnerRepoFromRemote(ctx context.Context, repoPath string) (string, error) {
	url, err := OriginURL(ctx, repoPath)
	if err != nil {
		return "", err
	}
	ownerRepo, ok := OwnerRepoFromURL(url)
	if !ok {
		return "", fmt.Errorf("origin remote %q is not a recognized github.com URL", url)
	}
	return ownerRepo, nil
}

// DefaultBranch returns the default base branch for the repository. It
// prefers the branch origin/HEAD points at, then checks for origin/main and
// origin/master (or their local counterparts), and falls back to "main".
func DefaultBranch(ctx context.Context, repoPath string) string {
	output, err := outputGit(ctx, repoPath, "symbolic-ref", "-q", "--short", "refs/remotes/origin/HEAD")
	if err == nil {
		ref := strings.TrimSpace(string(output)) // "origin/main"
		if rest, ok := strings.CutPrefix(ref, "origin/"); ok && rest != "" {
			return rest
		}
	}

	for _, candidate := range []string{"main", "master"} {
		if RefExists(ctx, repoPath, "refs/remotes/origin/"+candidate) ||
			RefExists(ctx, repoPath, "refs/heads/"+candidate) {
			return candidate
		}
	}
	return "main"
}

// RefExists reports whether the fully qualified ref exists.
func RefExists(ctx context.Context, repoPath, ref string) bool {
	return runGit(ctx, repoPath, "show-ref", "--verify", "--quiet", ref) == nil
}

// BranchExists reports whether a local branch exists.
func BranchExists(ctx context.Context, repoPath, branch string) bool {
	return RefExists(ctx, repoPath, "refs/heads/"+branch)
}

// Fetch updates the base branch from origin with pruning. Callers treat
// failures as non-fatal: offline operation must still work.
func Fetch(ctx context.Context, repoPath, branch string) error {
	if err := runGit(ctx, repoPath, "fetch", "--prune", "origin", branch); err != nil {
		return fmt.Errorf("failed to fetch origin/%s: %v", branch, err)
	}
	return nil
}
