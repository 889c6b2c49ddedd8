package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/issuewt/iwt/internal/issue"
)

// EnvLinearAPIKey is the environment variable carrying the Linear API key.
// Its absence disables the Linear lookup path entirely.
const EnvLinearAPIKey = "LINEAR_API_KEY"

const (
	linearEndpoint = "https://api.linear.app/graphql"
	linearTimeout  = 20 * time.Second
)

// Linear looks up issue metadata through Linear's GraphQL API.
type Linear struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

// NewLinear builds a Linear client from the environment.
func NewLinear() *Linear {
	return &Linear{
		APIKey:   os.Getenv(EnvLinearAPIKey),
		Endpoint: linearEndpoint,
		HTTP:     &http.Client{Timeout: linearTimeout},
	}
}

// Name returns "linear".
func (l *Linear) Name() string { return "linear" }

const (
	// Precise lookup by identifier.
	queryByIdentifier = `query($identifier: String!) {
  issues(filter: { identifier: { eq: $identifier } }, first: 1) {
    nodes { identifier title url }
  }
}`
	// Fallback for schemas without the identifier filter.
	querySearch = `query($query: String!) {
  issueSearch(query: $query, first: 1) {
    nodes { identifier title url }
  }
}`
)

type linearNode struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

type linearResponse struct {
	Data struct {
		Issues struct {
			Nodes []linearNode `json:"nodes"`
		} `json:"issues"`
		IssueSearch struct {
			Nodes []linearNode `json:"nodes"`
		} `json:"issueSearch"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Lookup fetches title and URL for a Linear issue. Tries the exact
// identifier filter first, then falls back to issueSearch.
func (l *Linear) Lookup(ctx context.Context, ref issue.Reference) (issue.Metadata, error) {
	if l.APIKey == "" {
		return issue.Metadata{}, ErrUnavailable
	}

	resp, err := l.query(ctx, queryByIdentifier, map[string]string{"identifier": ref.ID})
	if err != nil {
		return issue.Metadata{}, err
	}
	if len(resp.Errors) == 0 {
		if nodes := resp.Data.Issues.Nodes; len(nodes) > 0 {
			return issue.Metadata{Title: nodes[0].Title, URL: nodes[0].URL}, nil
		}
	}

	resp, err = l.query(ctx, querySearch, map[string]string{"query": ref.ID})
	if err != nil {
		return issue.Metadata{}, err
	}
	if len(resp.Errors) > 0 {
		return issue.Metadata{}, fmt.Errorf("linear API error: %s", resp.Errors[0].Message)
	}
	nodes := resp.Data.IssueSearch.Nodes
	if len(nodes) == 0 {
		return issue.Metadata{}, fmt.Errorf("linear issue %s not found", ref.ID)
	}
	return issue.Metadata{Title: nodes[0].Title, URL: nodes[0].URL}, nil
}

// query posts a GraphQL request. Linear instances differ in whether they
// expect "Bearer <key>" or the bare key, so a 401 triggers one retry with
// the bare form.
func (l *Linear) query(ctx context.Context, query string, variables map[string]string) (*linearResponse, error) {
	resp, status, err := l.post(ctx, query, variables, "Bearer "+l.APIKey)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		resp, status, err = l.post(ctx, query, variables, l.APIKey)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("linear API returned HTTP %d", status)
	}
	return resp, nil
}

func (l *Linear) post(ctx context.Context, query string, variables map[string]string, auth string) (*linearResponse, int, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

	httpResp, err := l.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("linear API request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, httpResp.StatusCode, nil
	}

	var decoded linearResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("failed to parse linear response: %w", err)
	}
	return &decoded, httpResp.StatusCode, nil
}
