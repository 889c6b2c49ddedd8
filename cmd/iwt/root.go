package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/issuewt/iwt/internal/config"
	"github.com/issuewt/iwt/internal/git"
	"github.com/issuewt/iwt/internal/issue"
	"github.com/issuewt/iwt/internal/log"
	"github.com/issuewt/iwt/internal/name"
	"github.com/issuewt/iwt/internal/output"
	"github.com/issuewt/iwt/internal/worktree"
)

// Exit codes. Scripts branch on these, so each failure class keeps a
// stable code.
const (
	exitOK      = 0
	exitFailure = 1
	exitParse   = 2
	exitNaming  = 3
	exitVC      = 4
	exitLinks   = 5
)

// errLinksFailed marks a run where the worktree itself is fine but one or
// more link entries failed or the declaration file could not be read.
var errLinksFailed = errors.New("link application failed")

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into the run
	cfg     *config.Config
	workDir string
)

// rootOptions holds every flag of the single root command.
type rootOptions struct {
	repo          string
	base          string
	worktreesRoot string
	prefix        string
	branch        string
	title         string
	url           string
	noFetch       bool
	linksFile     string
	noLinks       bool
	linkForce     bool
	dryRun        bool
	printPathOnly bool
	copyPath      bool
	initConfig    bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "iwt [issue-ref]",
		Short: "Turn an issue reference into an isolated git worktree",
		Long: `iwt takes a GitHub or Linear issue reference and creates a git worktree
on a deterministically named branch, so work on an issue never touches
your main checkout.

Accepted reference forms:
  https://github.com/owner/repo/issues/42
  https://linear.app/team/issue/ABC-7/...
  owner/repo#42
  ABC-7
  #42 or 42 (repo inferred from the origin remote)

Running the same reference twice reuses the existing worktree.`,
		Example: `  iwt 42                          # issue 42 in the current repo
  iwt owner/repo#42               # fully qualified GitHub issue
  iwt ABC-7                       # Linear issue
  iwt 42 --dry-run                # show the plan, change nothing
  iwt 42 --print-path-only        # just the worktree path, for scripting
  iwt --branch spike/try-caching  # explicit branch, no issue naming`,
		Args:                       cobra.MaximumNArgs(1),
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags are parsed by now; wire up the logger and printer here
			// so --verbose and --quiet actually take effect.
			ctx := cmd.Context()
			ctx = log.WithLogger(ctx, log.New(os.Stderr, verbose, quiet))
			ctx = output.WithPrinter(ctx, os.Stdout)
			cmd.SetContext(ctx)

			if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
				return nil
			}
			return git.CheckGit()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.initConfig {
				path, err := config.Init(false)
				if err != nil {
					return err
				}
				output.FromContext(cmd.Context()).Println(path)
				return nil
			}

			var rawRef string
			if len(args) > 0 {
				rawRef = args[0]
			}
			if rawRef == "" && opts.branch == "" {
				return fmt.Errorf("%w: an issue reference or --branch is required", issue.ErrUnrecognizedReference)
			}

			return run(cmd.Context(), *cfg, workDir, rawRef, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "Path to the repository (default: current directory)")
	cmd.Flags().StringVar(&opts.base, "base", "", "Base branch for new branches (default: origin/HEAD)")
	cmd.Flags().StringVar(&opts.worktreesRoot, "worktrees-root", "", "Root directory for worktrees (default: <repo-parent>/worktrees)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Branch name prefix (default: issue)")
	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "Explicit branch name, bypasses issue naming")
	cmd.Flags().StringVar(&opts.title, "title", "", "Issue title to use for the branch slug (skips lookup)")
	cmd.Flags().StringVar(&opts.url, "url", "", "Issue URL to record (skips lookup)")
	cmd.Flags().BoolVar(&opts.noFetch, "no-fetch", false, "Skip metadata lookup and the base branch fetch")
	cmd.Flags().StringVar(&opts.linksFile, "links-file", "", "Link declaration file (default: <repo>/"+config.DefaultLinksFileName+")")
	cmd.Flags().BoolVar(&opts.noLinks, "no-links", false, "Skip private file link application")
	cmd.Flags().BoolVar(&opts.linkForce, "link-force", false, "Replace existing files/symlinks at link destinations")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would happen without changing anything")
	cmd.Flags().BoolVar(&opts.printPathOnly, "print-path-only", false, "Print only the worktree path, skip lookup and mutation summary")
	cmd.Flags().BoolVar(&opts.copyPath, "copy", false, "Copy the worktree path to the clipboard")
	cmd.Flags().BoolVar(&opts.initConfig, "init-config", false, "Write a commented sample config to ~/.config/iwt/config.toml")

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("no-links", "link-force")

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}

// Execute runs the root command and maps the failure class to an exit code.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	workDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "iwt: failed to get working directory: %v\n", err)
		os.Exit(exitFailure)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "iwt: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to its exit code. Wrapping is respected, so any
// layer may add context without changing the code.
func exitCode(err error) int {
	var vcErr *worktree.VCError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, issue.ErrUnrecognizedReference), errors.Is(err, issue.ErrRepoInference):
		return exitParse
	case errors.Is(err, name.ErrInvalidBranchName):
		return exitNaming
	case errors.Is(err, worktree.ErrConflict), errors.As(err, &vcErr):
		return exitVC
	case errors.Is(err, errLinksFailed):
		return exitLinks
	default:
		return exitFailure
	}
}
