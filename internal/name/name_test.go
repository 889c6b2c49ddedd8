package name

import (
	"errors"
	"strings"
	"testing"

	"github.com/issuewt/iwt/internal/issue"
)

func TestBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ref    issue.Reference
		meta   issue.Metadata
		prefix string
		want   string
	}{
		{
			name:   "github without metadata",
			ref:    issue.Reference{Source: issue.SourceGitHub, ID: "42", OwnerRepo: "octo/widgets"},
			prefix: "issue",
			want:   "issue/gh-42",
		},
		{
			name:   "github with title",
			ref:    issue.Reference{Source: issue.SourceGitHub, ID: "42"},
			meta:   issue.Metadata{Title: "Fix login bug"},
			prefix: "issue",
			want:   "issue/gh-42-fix-login-bug",
		},
		{
			name:   "linear lowercases id",
			ref:    issue.Reference{Source: issue.SourceLinear, ID: "ABC-7"},
			meta:   issue.Metadata{Title: "Fix login bug"},
			prefix: "issue",
			want:   "issue/lin-abc-7-fix-login-bug",
		},
		{
			name:   "linear without metadata",
			ref:    issue.Reference{Source: issue.SourceLinear, ID: "ABC-7"},
			prefix: "issue",
			want:   "issue/lin-abc-7",
		},
		{
			name:   "custom prefix",
			ref:    issue.Reference{Source: issue.SourceGitHub, ID: "9"},
			prefix: "bugfix",
			want:   "bugfix/gh-9",
		},
		{
			name:   "title with no usable characters omits slug",
			ref:    issue.Reference{Source: issue.SourceGitHub, ID: "42"},
			meta:   issue.Metadata{Title: "日本語"},
			prefix: "issue",
			want:   "issue/gh-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Branch(tt.ref, tt.meta, tt.prefix); got != tt.want {
				t.Errorf("Branch() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestBranch_IDRoundTrip verifies the issue id embedded in a generated branch
// name re-parses to the original reference identity.
func TestBranch_IDRoundTrip(t *testing.T) {
	t.Parallel()

	ref := issue.Reference{Source: issue.SourceLinear, ID: "ABC-7"}
	branch := Branch(ref, issue.Metadata{Title: "Fix login bug"}, "issue")

	// Branch is issue/lin-abc-7-fix-login-bug; the id sits after the tag.
	rest := strings.TrimPrefix(branch, "issue/lin-")
	idPart := strings.Join(strings.SplitN(rest, "-", 3)[:2], "-")

	reparsed, err := issue.Parse(strings.ToUpper(idPart), issue.ParseOptions{})
	if err != nil {
		t.Fatalf("re-parsing embedded id %q: %v", idPart, err)
	}
	if !strings.EqualFold(reparsed.ID, ref.ID) {
		t.Errorf("recovered id = %q, want %q", reparsed.ID, ref.ID)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate("issue/gh-42"); err != nil {
		t.Errorf("Validate(ascii) = %v, want nil", err)
	}

	err := Validate("feature/日本語")
	if !errors.Is(err, ErrInvalidBranchName) {
		t.Fatalf("Validate(non-ascii) = %v, want ErrInvalidBranchName", err)
	}
	if !strings.Contains(err.Error(), "日") {
		t.Errorf("error %q should name the offending character", err)
	}

	if err := Validate(""); !errors.Is(err, ErrInvalidBranchName) {
		t.Errorf("Validate(\"\") = %v, want ErrInvalidBranchName", err)
	}
}

func TestWorktreePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		root     string
		repoRoot string
		branch   string
		want     string
	}{
		{
			name:     "default sibling root",
			root:     "",
			repoRoot: "/home/user/repos/widgets",
			branch:   "issue/gh-42",
			want:     "/home/user/repos/worktrees/widgets/issue/gh-42",
		},
		{
			name:     "explicit root",
			root:     "/srv/worktrees",
			repoRoot: "/home/user/repos/widgets",
			branch:   "issue/lin-abc-7",
			want:     "/srv/worktrees/widgets/issue/lin-abc-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WorktreePath(tt.root, tt.repoRoot, tt.branch); got != tt.want {
				t.Errorf("WorktreePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerate_OverrideAuthoritative(t *testing.T) {
	t.Parallel()

	spec, err := Generate(Params{
		Ref:      issue.Reference{Source: issue.SourceGitHub, ID: "42"},
		Meta:     issue.Metadata{Title: "ignored entirely"},
		Prefix:   "issue",
		Override: "feature/custom",
		RepoRoot: "/repos/widgets",
	})
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if spec.Branch != "feature/custom" {
		t.Errorf("Branch = %q, want override", spec.Branch)
	}
}

func TestGenerate_OverrideStillValidated(t *testing.T) {
	t.Parallel()

	_, err := Generate(Params{
		Override: "feature/日本語",
		RepoRoot: "/repos/widgets",
	})
	if !errors.Is(err, ErrInvalidBranchName) {
		t.Errorf("Generate(non-ascii override) = %v, want ErrInvalidBranchName", err)
	}
}

func TestGenerate_SpecScenario(t *testing.T) {
	t.Parallel()

	// owner/repo#42 with no metadata: branch issue/gh-42,
	// path <parent>/worktrees/<repo>/issue/gh-42.
	spec, err := Generate(Params{
		Ref:      issue.Reference{Source: issue.SourceGitHub, ID: "42", OwnerRepo: "octo/repo"},
		Prefix:   "issue",
		RepoRoot: "/home/user/code/repo",
	})
	if err != nil {
		t.Fatalf("Generate error = %v", err)
	}
	if spec.Branch != "issue/gh-42" {
		t.Errorf("Branch = %q, want issue/gh-42", spec.Branch)
	}
	if spec.Path != "/home/user/code/worktrees/repo/issue/gh-42" {
		t.Errorf("Path = %q", spec.Path)
	}
}
