// Package tracker provides best-effort issue metadata lookup.
//
// Lookups are an optional capability: a missing CLI or API key disables the
// client rather than failing the run, and every lookup error degrades to
// empty metadata. Naming never depends on a tracker being reachable.
package tracker

import (
	"context"
	"errors"

	"github.com/issuewt/iwt/internal/issue"
	"github.com/issuewt/iwt/internal/log"
)

// ErrUnavailable signals the lookup capability is absent (no CLI installed,
// no API key configured). Callers degrade to empty metadata.
var ErrUnavailable = errors.New("metadata lookup unavailable")

// Client fetches metadata for an issue reference.
type Client interface {
	// Name identifies the tracker ("github", "linear", "none").
	Name() string

	// Lookup returns metadata for the reference, or ErrUnavailable when
	// the capability is missing.
	Lookup(ctx context.Context, ref issue.Reference) (issue.Metadata, error)
}

// None is the null client used when lookups are disabled.
type None struct{}

func (None) Name() string { return "none" }

func (None) Lookup(context.Context, issue.Reference) (issue.Metadata, error) {
	return issue.Metadata{}, nil
}

// ForReference picks the client matching the reference's tracker.
func ForReference(ref issue.Reference) Client {
	switch ref.Source {
	case issue.SourceGitHub:
		return &GitHub{}
	case issue.SourceLinear:
		return NewLinear()
	default:
		return None{}
	}
}

// BestEffort runs a lookup and degrades every failure to empty metadata with
// a warning. It never returns an error: metadata is an enhancement, not a
// requirement.
func BestEffort(ctx context.Context, c Client, ref issue.Reference) issue.Metadata {
	meta, err := c.Lookup(ctx, ref)
	if err != nil {
		l := log.FromContext(ctx)
		if errors.Is(err, ErrUnavailable) {
			l.Warnf("%s metadata lookup unavailable, branch name will have no slug", c.Name())
		} else {
			l.Warnf("%s metadata lookup failed: %v (continuing without metadata)", c.Name(), err)
		}
		return issue.Metadata{}
	}
	return meta
}
