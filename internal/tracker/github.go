package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/issuewt/iwt/internal/cmd"
	"github.com/issuewt/iwt/internal/issue"
)

// GitHub looks up issue metadata through the gh CLI, which handles
// authentication and enterprise hosts on its own.
type GitHub struct{}

// Name returns "github".
func (g *GitHub) Name() string { return "github" }

// Lookup fetches title and URL for a GitHub issue via `gh issue view`.
// A missing gh binary means the capability is absent, not an error state.
func (g *GitHub) Lookup(ctx context.Context, ref issue.Reference) (issue.Metadata, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return issue.Metadata{}, ErrUnavailable
	}

	args := []string{"issue", "view", ref.ID, "--json", "title,url"}
	if ref.OwnerRepo != "" {
		args = append(args, "--repo", ref.OwnerRepo)
	}

	output, err := cmd.OutputContext(ctx, "", "gh", args...)
	if err != nil {
		return issue.Metadata{}, fmt.Errorf("gh issue view: %w", err)
	}
	return parseIssueView(output)
}

func parseIssueView(data []byte) (issue.Metadata, error) {
	var result struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return issue.Metadata{}, fmt.Errorf("failed to parse gh output: %w", err)
	}
	return issue.Metadata{Title: result.Title, URL: result.URL}, nil
}
