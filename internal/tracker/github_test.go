package tracker

import (
	"context"
	"testing"

	"github.com/issuewt/iwt/internal/issue"
)

func TestParseIssueView(t *testing.T) {
	t.Parallel()

	meta, err := parseIssueView([]byte(`{"title":"Fix login bug","url":"https://github.com/acme/api/issues/42"}`))
	if err != nil {
		t.Fatalf("parseIssueView error = %v", err)
	}
	if meta.Title != "Fix login bug" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.URL != "https://github.com/acme/api/issues/42" {
		t.Errorf("URL = %q", meta.URL)
	}

	if _, err := parseIssueView([]byte("not json")); err == nil {
		t.Error("parseIssueView accepted malformed output")
	}
}

func TestNoneClient(t *testing.T) {
	t.Parallel()

	meta, err := None{}.Lookup(context.Background(), issue.Reference{})
	if err != nil {
		t.Fatalf("None.Lookup error = %v", err)
	}
	if meta != (issue.Metadata{}) {
		t.Errorf("None.Lookup = %+v, want empty", meta)
	}
}
