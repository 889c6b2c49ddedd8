// Package issue parses heterogeneous issue references and derives
// branch-safe slugs from issue titles.
package issue

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Source identifies the issue tracker a reference belongs to.
type Source string

const (
	// SourceGitHub is a GitHub issue reference.
	SourceGitHub Source = "github"
	// SourceLinear is a Linear issue reference.
	SourceLinear Source = "linear"
)

// Reference is a normalized, source-tagged issue reference.
type Reference struct {
	Source    Source
	ID        string // "42" for GitHub, "ABC-7" (verbatim case) for Linear
	OwnerRepo string // "owner/repo", GitHub only; may be inferred from origin
	Raw       string // the original input, for display
}

// Metadata holds optional issue metadata supplied externally or fetched from
// a tracker. Absence never blocks naming.
type Metadata struct {
	Title string
	URL   string
}

// ErrUnrecognizedReference indicates the input matched no known reference form.
var ErrUnrecognizedReference = errors.New("unrecognized issue reference")

// ErrRepoInference indicates a bare issue number was given but the owner/repo
// could not be determined from the local repository's remote.
var ErrRepoInference = errors.New("cannot infer repository for bare issue number")

// ParseOptions configures reference parsing.
type ParseOptions struct {
	// InferOwnerRepo resolves "owner/repo" for bare GitHub issue numbers,
	// typically from the local repository's origin remote. Only called when
	// the input carries no repository itself. Nil means inference is
	// unavailable.
	InferOwnerRepo func() (string, error)
}

var (
	githubIssueURL = regexp.MustCompile(`^https?://github\.com/([^/\s]+)/([^/\s]+)/issues/(\d+)(?:/.*)?$`)
	linearKey      = regexp.MustCompile(`\b([A-Z][A-Z0-9]*-\d+)\b`)
	linearBareKey  = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)
	ownerRepoIssue = regexp.MustCompile(`^([^/\s]+/[^#\s]+)#(\d+)$`)
	bareNumber     = regexp.MustCompile(`^#?(\d+)$`)
)

// Parse classifies a raw issue reference string into exactly one Reference.
//
// Recognized forms, in precedence order:
//  1. tracker URLs (GitHub issue URL, Linear issue URL)
//  2. owner/repo#<number>
//  3. <KEY>-<number> (Linear identifier)
//  4. #<number> or bare <number> (GitHub, repo inferred via opts)
//
// Ambiguous or unrecognized input is an error, never a guess.
func Parse(raw string, opts ParseOptions) (Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Reference{}, fmt.Errorf("%w: empty input", ErrUnrecognizedReference)
	}

	// Linear URL (or a URL-ish string carrying a Linear key).
	if strings.Contains(s, "linear.app") {
		if m := linearKey.FindStringSubmatch(s); m != nil {
			return Reference{Source: SourceLinear, ID: m[1], Raw: raw}, nil
		}
		return Reference{}, fmt.Errorf("%w: %q", ErrUnrecognizedReference, raw)
	}

	// GitHub issue URL.
	if m := githubIssueURL.FindStringSubmatch(s); m != nil {
		return Reference{
			Source:    SourceGitHub,
			ID:        m[3],
			OwnerRepo: m[1] + "/" + m[2],
			Raw:       raw,
		}, nil
	}

	// owner/repo#123
	if m := ownerRepoIssue.FindStringSubmatch(s); m != nil {
		return Reference{Source: SourceGitHub, ID: m[2], OwnerRepo: m[1], Raw: raw}, nil
	}

	// Linear identifier: ABC-123
	if linearBareKey.MatchString(s) {
		return Reference{Source: SourceLinear, ID: s, Raw: raw}, nil
	}

	// #123 or bare 123: repo must come from the local remote.
	if m := bareNumber.FindStringSubmatch(s); m != nil {
		if opts.InferOwnerRepo == nil {
			return Reference{}, fmt.Errorf("%w: %q", ErrRepoInference, raw)
		}
		ownerRepo, err := opts.InferOwnerRepo()
		if err != nil || ownerRepo == "" {
			return Reference{}, fmt.Errorf("%w: %q", ErrRepoInference, raw)
		}
		return Reference{Source: SourceGitHub, ID: m[1], OwnerRepo: ownerRepo, Raw: raw}, nil
	}

	return Reference{}, fmt.Errorf("%w: %q", ErrUnrecognizedReference, raw)
}

// Key returns the reference identity without the raw input: source, id and
// repository. Two references to the same issue compare equal by Key
// regardless of the input form they were parsed from.
func (r Reference) Key() Reference {
	return Reference{Source: r.Source, ID: r.ID, OwnerRepo: r.OwnerRepo}
}

// String renders the reference for display.
func (r Reference) String() string {
	switch r.Source {
	case SourceGitHub:
		if r.OwnerRepo != "" {
			return fmt.Sprintf("%s#%s", r.OwnerRepo, r.ID)
		}
		return "#" + r.ID
	case SourceLinear:
		return r.ID
	default:
		return r.Raw
	}
}
