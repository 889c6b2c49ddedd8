package log

import (
	"context"
	"strings"
	"testing"
)

func TestPrintf_Quiet(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	l := New(&buf, false, true)
	l.Printf("hello %s\n", "world")
	if buf.Len() != 0 {
		t.Errorf("quiet Printf wrote %q, want nothing", buf.String())
	}
}

func TestWarnf_ShownInQuietMode(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	l := New(&buf, false, true)
	l.Warnf("lookup failed: %s", "timeout")
	got := buf.String()
	if !strings.Contains(got, "warning: lookup failed: timeout") {
		t.Errorf("Warnf output = %q, want warning prefix and message", got)
	}
}

func TestCommand_VerboseOnly(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	l := New(&buf, false, false)
	l.Command("git", "status")
	if buf.Len() != 0 {
		t.Errorf("non-verbose Command wrote %q, want nothing", buf.String())
	}

	l = New(&buf, true, false)
	l.Command("git", "worktree", "list")
	if got, want := buf.String(), "$ git worktree list\n"; got != want {
		t.Errorf("verbose Command wrote %q, want %q", got, want)
	}
}

func TestFromContext_NoLogger(t *testing.T) {
	t.Parallel()

	// Must not panic and must swallow output.
	l := FromContext(context.Background())
	l.Printf("ignored")
	l.Warnf("ignored")
}

func TestFromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	l := New(&buf, true, false)
	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext did not return the attached logger")
	}
}
