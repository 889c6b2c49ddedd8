// Package links materializes a user-declared set of private file symlinks
// inside a new worktree. Application is additive and non-destructive: entries
// fail or get skipped individually, directories are never deleted.
package links

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Spec is one link declaration: src outside the worktree, dest inside it.
type Spec struct {
	Src   string
	Dest  string
	Force bool
}

// ErrLinkPath indicates a dest that is absolute or escapes the worktree.
var ErrLinkPath = errors.New("link dest outside worktree")

// Status classifies the outcome of one link entry.
type Status int

const (
	// StatusApplied means the link was created (or would be, in dry-run).
	StatusApplied Status = iota
	// StatusSkipped means the entry was left alone: dest already exists,
	// the link is already in place, or the source is missing.
	StatusSkipped
	// StatusFailed means the entry could not be applied.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the per-entry outcome. The whole-run result is always the full
// list, never a single aggregate boolean: partial success is expected.
type Result struct {
	Spec   Spec
	Status Status
	Reason string // human explanation for skipped entries
	Err    error  // set when Status is StatusFailed
}

// AnyFailed reports whether at least one entry failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// rawSpec accepts the src/dest field names plus their source/target aliases.
type rawSpec struct {
	Src    string `json:"src"`
	Source string `json:"source"`
	Dest   string `json:"dest"`
	Target string `json:"target"`
	Force  bool   `json:"force"`
}

// Load reads link declarations from a JSON file. A missing file is not an
// error; it simply means there is nothing to link.
func Load(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read links file %s: %w", path, err)
	}

	var raws []rawSpec
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse links file %s: expected a JSON array of {src, dest, force?}: %w", path, err)
	}

	specs := make([]Spec, 0, len(raws))
	for i, r := range raws {
		src := r.Src
		if src == "" {
			src = r.Source
		}
		dest := r.Dest
		if dest == "" {
			dest = r.Target
		}
		if src == "" || dest == "" {
			return nil, fmt.Errorf("links file %s: entry %d must have src and dest", path, i)
		}
		specs = append(specs, Spec{Src: src, Dest: dest, Force: r.Force})
	}
	return specs, nil
}

// Options controls link application.
type Options struct {
	Force  bool // global force: replace existing files/symlinks at dest
	DryRun bool // report planned actions without touching the filesystem
}

// Apply creates each declared link inside worktreePath. Entries are
// independent: a failed entry is recorded and the rest continue.
func Apply(worktreePath string, specs []Spec, opts Options) []Result {
	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		results = append(results, applyOne(worktreePath, spec, opts))
	}
	return results
}

func applyOne(worktreePath string, spec Spec, opts Options) Result {
	dest, err := resolveDest(worktreePath, spec.Dest)
	if err != nil {
		return Result{Spec: spec, Status: StatusFailed, Err: err}
	}

	src, err := expandPath(spec.Src)
	if err != nil {
		return Result{Spec: spec, Status: StatusFailed, Err: err}
	}
	if _, err := os.Stat(src); err != nil {
		return Result{Spec: spec, Status: StatusSkipped, Reason: "source missing: " + src}
	}

	force := spec.Force || opts.Force

	if info, err := os.Lstat(dest); err == nil {
		if sameSymlink(dest, src) {
			return Result{Spec: spec, Status: StatusSkipped, Reason: "already linked"}
		}
		if !force {
			return Result{Spec: spec, Status: StatusSkipped, Reason: "exists (use force to replace)"}
		}
		// Force replaces files and symlinks only, never directories.
		if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			return Result{Spec: spec, Status: StatusFailed,
				Err: fmt.Errorf("refusing to replace directory %s", dest)}
		}
		if !opts.DryRun {
			if err := os.Remove(dest); err != nil {
				return Result{Spec: spec, Status: StatusFailed, Err: err}
			}
		}
	}

	if opts.DryRun {
		return Result{Spec: spec, Status: StatusApplied, Reason: "dry-run"}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Result{Spec: spec, Status: StatusFailed, Err: err}
	}
	if err := os.Symlink(src, dest); err != nil {
		return Result{Spec: spec, Status: StatusFailed, Err: err}
	}
	return Result{Spec: spec, Status: StatusApplied}
}

// resolveDest resolves a declared dest against the worktree root and rejects
// anything that is absolute or escapes the root.
func resolveDest(worktreePath, dest string) (string, error) {
	if filepath.IsAbs(dest) {
		return "", fmt.Errorf("%w: %q is absolute", ErrLinkPath, dest)
	}
	for _, part := range strings.Split(filepath.Clean(dest), string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("%w: %q escapes the worktree", ErrLinkPath, dest)
		}
	}

	root := filepath.Clean(worktreePath)
	resolved := filepath.Join(root, dest)
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside %s", ErrLinkPath, dest, root)
	}
	if resolved == root {
		return "", fmt.Errorf("%w: %q is the worktree root itself", ErrLinkPath, dest)
	}
	return resolved, nil
}

// expandPath expands ~ and environment variables in a source path.
func expandPath(path string) (string, error) {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// sameSymlink reports whether dest is already a symlink pointing at src.
// The stored target may be relative; compare after resolving both sides.
func sameSymlink(dest, src string) bool {
	target, err := os.Readlink(dest)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(dest), target)
	}
	targetResolved, err := filepath.EvalSymlinks(filepath.Dir(target))
	if err != nil {
		return false
	}
	srcResolved, err := filepath.EvalSymlinks(filepath.Dir(src))
	if err != nil {
		return false
	}
	return filepath.Join(targetResolved, filepath.Base(target)) ==
		filepath.Join(srcResolved, filepath.Base(src))
}
