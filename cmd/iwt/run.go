package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/issuewt/iwt/internal/config"
	"github.com/issuewt/iwt/internal/git"
	"github.com/issuewt/iwt/internal/issue"
	"github.com/issuewt/iwt/internal/links"
	"github.com/issuewt/iwt/internal/log"
	"github.com/issuewt/iwt/internal/name"
	"github.com/issuewt/iwt/internal/output"
	"github.com/issuewt/iwt/internal/tracker"
	"github.com/issuewt/iwt/internal/worktree"
)

// run executes the whole flow: parse the reference, derive the branch name,
// ensure the worktree, apply private links. The worktree path is the last
// line on stdout so scripts can capture it; everything else goes to stderr.
func run(ctx context.Context, cfg config.Config, workDir, rawRef string, opts rootOptions) error {
	l := log.FromContext(ctx)
	p := output.FromContext(ctx)

	repoRoot, err := resolveRepoRoot(ctx, workDir, opts.repo)
	if err != nil {
		return err
	}

	// The reference is parsed even with --branch so the plan can name the
	// issue being worked on.
	var ref issue.Reference
	if rawRef != "" {
		ref, err = issue.Parse(rawRef, issue.ParseOptions{
			InferOwnerRepo: func() (string, error) {
				return git.OwnerRepoFromRemote(ctx, repoRoot)
			},
		})
		if err != nil {
			return err
		}
	}

	meta := issue.Metadata{Title: opts.title, URL: opts.url}
	if meta.Title == "" && rawRef != "" && opts.branch == "" && !opts.noFetch && !opts.printPathOnly {
		fetched := tracker.BestEffort(ctx, tracker.ForReference(ref), ref)
		meta.Title = fetched.Title
		if meta.URL == "" {
			meta.URL = fetched.URL
		}
	}

	prefix := cfg.Prefix
	if opts.prefix != "" {
		prefix = opts.prefix
	}
	worktreesRoot := cfg.WorktreeDir
	if opts.worktreesRoot != "" {
		worktreesRoot = opts.worktreesRoot
	}

	spec, err := name.Generate(name.Params{
		Ref:           ref,
		Meta:          meta,
		Prefix:        prefix,
		Override:      opts.branch,
		RepoRoot:      repoRoot,
		WorktreesRoot: worktreesRoot,
	})
	if err != nil {
		return err
	}
	if err := git.ValidateBranchName(ctx, repoRoot, spec.Branch); err != nil {
		return fmt.Errorf("%w: %v", name.ErrInvalidBranchName, err)
	}

	if opts.printPathOnly {
		p.Println(spec.Path)
		return nil
	}

	base := cfg.BaseBranch
	if opts.base != "" {
		base = opts.base
	}
	if base == "" {
		base = git.DefaultBranch(ctx, repoRoot)
	}

	printPlan(l, plan{
		repoRoot: repoRoot,
		base:     base,
		ref:      ref,
		meta:     meta,
		branch:   spec.Branch,
		path:     spec.Path,
	})

	rec, err := worktree.Ensure(ctx, &worktree.GitEngine{RepoRoot: repoRoot}, worktree.Params{
		Branch:    spec.Branch,
		Path:      spec.Path,
		Base:      base,
		DryRun:    opts.dryRun,
		SkipFetch: opts.noFetch,
	})
	if err != nil {
		return err
	}

	reportOutcome(l, rec, opts.dryRun)

	var linkErr error
	if !opts.noLinks && !cfg.Links.Disable {
		linkErr = applyLinks(ctx, repoRoot, rec.Path, cfg, opts)
	}

	p.Println(rec.Path)

	if opts.copyPath {
		if err := clipboard.WriteAll(rec.Path); err != nil {
			l.Warnf("failed to copy path to clipboard: %v", err)
		}
	}

	if rec.Outcome == worktree.OutcomeCreated && !opts.dryRun {
		l.Printf("\nNext steps:\n")
		l.Printf("  cd %s\n", rec.Path)
		l.Printf("  git push -u origin %s   # when ready\n", rec.Branch)
	}

	return linkErr
}

// resolveRepoRoot finds the main repository root from --repo or the working
// directory.
func resolveRepoRoot(ctx context.Context, workDir, repoFlag string) (string, error) {
	dir := workDir
	if repoFlag != "" {
		abs, err := filepath.Abs(repoFlag)
		if err != nil {
			return "", err
		}
		dir = abs
	}
	root, err := git.RepoRoot(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("not inside a git repository (use --repo): %w", err)
	}
	return root, nil
}

// plan is the summary printed before anything is mutated.
type plan struct {
	repoRoot string
	base     string
	ref      issue.Reference
	meta     issue.Metadata
	branch   string
	path     string
}

func printPlan(l *log.Logger, d plan) {
	l.Printf("Repository: %s\n", d.repoRoot)
	l.Printf("Base:       %s\n", d.base)
	if d.ref != (issue.Reference{}) {
		l.Printf("Issue:      %s\n", d.ref)
	}
	if d.meta.Title != "" {
		l.Printf("Title:      %s\n", d.meta.Title)
	}
	if d.meta.URL != "" {
		l.Printf("URL:        %s\n", d.meta.URL)
	}
	l.Printf("Branch:     %s\n", d.branch)
	l.Printf("Worktree:   %s\n", d.path)
}

func reportOutcome(l *log.Logger, rec worktree.Record, dryRun bool) {
	if dryRun {
		l.Printf("%s dry-run: worktree would be %s at %s\n", symbolArrow(), rec.Outcome, rec.Path)
		return
	}
	switch rec.Outcome {
	case worktree.OutcomeReused:
		l.Printf("%s Reusing worktree for %s\n", symbolArrow(), rec.Branch)
	case worktree.OutcomeBranchCheckout:
		l.Printf("%s Worktree created from existing branch %s\n", symbolOK(), rec.Branch)
	case worktree.OutcomeCreated:
		l.Printf("%s Worktree created on new branch %s\n", symbolOK(), rec.Branch)
	}
}

// applyLinks loads the declaration file and applies every entry, reporting
// each one. A failed entry never stops the rest; it surfaces as errLinksFailed
// after the full report.
func applyLinks(ctx context.Context, repoRoot, worktreePath string, cfg config.Config, opts rootOptions) error {
	l := log.FromContext(ctx)

	linksFile := opts.linksFile
	if linksFile == "" {
		linksFile = cfg.Links.File
	}
	if linksFile == "" {
		linksFile = filepath.Join(repoRoot, config.DefaultLinksFileName)
	}

	specs, err := links.Load(linksFile)
	if err != nil {
		return fmt.Errorf("%w: %v", errLinksFailed, err)
	}
	if len(specs) == 0 {
		return nil
	}

	results := links.Apply(worktreePath, specs, links.Options{
		Force:  opts.linkForce || cfg.Links.Force,
		DryRun: opts.dryRun,
	})

	for _, r := range results {
		switch r.Status {
		case links.StatusApplied:
			l.Printf("%s link %s\n", symbolOK(), r.Spec.Dest)
		case links.StatusSkipped:
			l.Printf("%s link %s skipped: %s\n", symbolArrow(), r.Spec.Dest, r.Reason)
		case links.StatusFailed:
			l.Printf("%s link %s failed: %v\n", symbolFail(), r.Spec.Dest, r.Err)
		}
	}

	if links.AnyFailed(results) {
		return fmt.Errorf("%w: see the entries marked failed above", errLinksFailed)
	}
	return nil
}
