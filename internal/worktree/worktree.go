// Package worktree ensures a worktree exists for a branch, reusing any
// registered one and refusing to clobber paths it does not own.
package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/issuewt/iwt/internal/log"
)

// Outcome enumerates the terminal states of one Ensure invocation. A new
// outcome must be handled everywhere a Record is reported.
type Outcome int

const (
	// OutcomeReused means the branch already had a registered worktree;
	// nothing was mutated.
	OutcomeReused Outcome = iota
	// OutcomeBranchCheckout means the branch existed but had no worktree;
	// a worktree was attached to it.
	OutcomeBranchCheckout
	// OutcomeCreated means both branch and worktree were created fresh
	// from the base branch.
	OutcomeCreated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReused:
		return "reused"
	case OutcomeBranchCheckout:
		return "created from existing branch"
	case OutcomeCreated:
		return "created"
	default:
		return "unknown"
	}
}

// Record describes the worktree resulting from one invocation. It is not
// persisted; its lifecycle is a single command run.
type Record struct {
	Branch        string
	Path          string
	Outcome       Outcome
	ExistedBefore bool
}

// ErrConflict indicates the target path exists but is not a registered
// worktree for the expected branch. Overwriting it silently is never safe.
var ErrConflict = errors.New("worktree conflict")

// VCError wraps a failure of the underlying version-control engine together
// with the attempted operation. The engine's message is surfaced verbatim.
type VCError struct {
	Op  string
	Err error
}

func (e *VCError) Error() string {
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *VCError) Unwrap() error { return e.Err }

// Info is one registered worktree as reported by the engine.
type Info struct {
	Path   string
	Branch string
}

// Engine is the version-control collaborator. The orchestrator depends only
// on these primitives, not on git's internal representation, so the state
// machine is testable without a repository.
type Engine interface {
	// BranchExists reports whether the local branch exists.
	BranchExists(ctx context.Context, branch string) bool
	// Worktrees lists all registered worktrees.
	Worktrees(ctx context.Context) ([]Info, error)
	// AddWorktree attaches a worktree at path for an existing branch.
	AddWorktree(ctx context.Context, path, branch string) error
	// AddWorktreeBranch creates branch from baseRef and attaches a worktree.
	AddWorktreeBranch(ctx context.Context, path, branch, baseRef string) error
	// ResolveBaseRef maps a base branch to the ref new branches start from,
	// preferring the remote-tracking ref when it exists.
	ResolveBaseRef(ctx context.Context, base string) string
	// FetchBase updates the base branch from the remote. Best effort.
	FetchBase(ctx context.Context, base string) error
}

// Params configures one Ensure invocation.
type Params struct {
	Branch    string
	Path      string
	Base      string // base branch for fresh branches
	DryRun    bool   // perform all checks, mutate nothing
	SkipFetch bool   // skip the best-effort fetch before creating
}

// Ensure makes sure a worktree exists at p.Path on p.Branch, reusing any
// registered one. Dry-run reports the would-be outcome without mutating
// branch or filesystem state.
func Ensure(ctx context.Context, eng Engine, p Params) (Record, error) {
	l := log.FromContext(ctx)

	worktrees, err := eng.Worktrees(ctx)
	if err != nil {
		return Record{}, &VCError{Op: "worktree list", Err: err}
	}

	// Reuse: the branch already has a registered worktree.
	for _, wt := range worktrees {
		if wt.Branch == p.Branch {
			return Record{
				Branch:        p.Branch,
				Path:          wt.Path,
				Outcome:       OutcomeReused,
				ExistedBefore: true,
			}, nil
		}
	}

	// Conservative conflict check: a path we did not register is not ours
	// to overwrite, whatever it contains.
	if _, err := os.Lstat(p.Path); err == nil {
		return Record{}, fmt.Errorf("%w: %s exists but is not a worktree for branch %q",
			ErrConflict, p.Path, p.Branch)
	}

	branchExists := eng.BranchExists(ctx, p.Branch)

	outcome := OutcomeCreated
	if branchExists {
		outcome = OutcomeBranchCheckout
	}
	rec := Record{Branch: p.Branch, Path: p.Path, Outcome: outcome}

	if p.DryRun {
		return rec, nil
	}

	// Refresh the base before branching off it. Failure is non-fatal:
	// offline creation from the local ref must keep working.
	if !p.SkipFetch {
		if err := eng.FetchBase(ctx, p.Base); err != nil {
			l.Warnf("%v (continuing with local refs)", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0755); err != nil {
		return Record{}, &VCError{Op: "worktree add", Err: err}
	}

	if branchExists {
		if err := eng.AddWorktree(ctx, p.Path, p.Branch); err != nil {
			return Record{}, &VCError{Op: "worktree add", Err: err}
		}
		return rec, nil
	}

	baseRef := eng.ResolveBaseRef(ctx, p.Base)
	if err := eng.AddWorktreeBranch(ctx, p.Path, p.Branch, baseRef); err != nil {
		return Record{}, &VCError{Op: fmt.Sprintf("worktree add -b %s", p.Branch), Err: err}
	}
	return rec, nil
}
