// Package name composes deterministic branch names and worktree paths from
// parsed issue references.
package name

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/issuewt/iwt/internal/issue"
)

// Source tags embedded in generated branch names.
const (
	githubTag = "gh"
	linearTag = "lin"
)

// ErrInvalidBranchName indicates a branch name failed validation before any
// mutation happened.
var ErrInvalidBranchName = errors.New("invalid branch name")

// Spec is the derived branch name and worktree path for one invocation.
type Spec struct {
	Branch string
	Path   string
}

// Params carries everything needed to derive a Spec.
type Params struct {
	Ref           issue.Reference
	Meta          issue.Metadata
	Prefix        string // branch prefix, e.g. "issue"
	Override      string // explicit branch name; bypasses composition entirely
	RepoRoot      string // absolute path of the main repository
	WorktreesRoot string // empty means <repo-parent>/worktrees
}

// Generate derives the branch name and worktree path. Validation happens
// before the caller mutates anything: compose, check ASCII, check non-empty.
func Generate(p Params) (Spec, error) {
	branch := p.Override
	if branch == "" {
		branch = Branch(p.Ref, p.Meta, p.Prefix)
	}

	if err := Validate(branch); err != nil {
		return Spec{}, err
	}

	return Spec{
		Branch: branch,
		Path:   WorktreePath(p.WorktreesRoot, p.RepoRoot, branch),
	}, nil
}

// Branch composes the default branch name for a reference:
// <prefix>/gh-<id>[-<slug>] or <prefix>/lin-<id>[-<slug>].
// Linear identifiers are lowercased for naming; the reference keeps the
// verbatim form for display.
func Branch(ref issue.Reference, meta issue.Metadata, prefix string) string {
	var base string
	switch ref.Source {
	case issue.SourceLinear:
		base = fmt.Sprintf("%s/%s-%s", prefix, linearTag, strings.ToLower(ref.ID))
	default:
		base = fmt.Sprintf("%s/%s-%s", prefix, githubTag, ref.ID)
	}

	if slug := issue.Slug(meta.Title); slug != "" {
		return base + "-" + slug
	}
	return base
}

// Validate rejects empty and non-ASCII branch names. Non-ASCII input is a
// hard error naming the offending character, never a silent transliteration.
func Validate(branch string) error {
	if branch == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBranchName)
	}
	for i, r := range branch {
		if r > unicode.MaxASCII {
			return fmt.Errorf("%w: %q contains non-ASCII character %q at byte %d",
				ErrInvalidBranchName, branch, r, i)
		}
	}
	return nil
}

// WorktreePath derives the worktree location:
// <worktrees-root>/<repo-name>/<branch>. The root defaults to a "worktrees"
// directory next to the repository, never inside it.
func WorktreePath(worktreesRoot, repoRoot, branch string) string {
	if worktreesRoot == "" {
		worktreesRoot = filepath.Join(filepath.Dir(repoRoot), "worktrees")
	}
	return filepath.Join(worktreesRoot, filepath.Base(repoRoot), branch)
}
