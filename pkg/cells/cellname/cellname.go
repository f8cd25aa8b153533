// Package cellname implements the hierarchical, slash-separated cell
// identifier described by the cell service: an ordered, non-empty sequence
// of DNS-label segments such as "a/b/c".
package cellname

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// segmentRegex matches a single DNS-label-like segment: 1-63 characters,
// alphanumeric or hyphen, never starting or ending with a hyphen.
var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// ValidationError is returned when a candidate name fails the segment
// grammar. It carries the offending field so callers can report a
// "failed precondition" without string-matching the message.
type ValidationError struct {
	Field string
	Value string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid value %q: %s", e.Field, e.Value, e.Cause)
}

// Name is a parsed, validated hierarchical cell name.
type Name struct {
	segments []string
}

// Parse trims one leading and one trailing '/', splits on '/', and
// validates every segment against the DNS-label grammar. An empty string
// (after trimming) is an error, as is any segment that fails the grammar.
func Parse(s string) (Name, error) {
	trimmed := strings.TrimPrefix(s, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return Name{}, &ValidationError{Field: "cell_name", Value: s, Cause: "must not be empty"}
	}

	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if seg == "" {
			return Name{}, &ValidationError{Field: "cell_name", Value: s, Cause: "must not contain empty segments"}
		}
		if !segmentRegex.MatchString(seg) {
			return Name{}, &ValidationError{Field: "cell_name", Value: seg, Cause: "must match the DNS label grammar (1-63 chars, alphanumeric/hyphen, no leading/trailing hyphen)"}
		}
	}

	out := make([]string, len(segments))
	copy(out, segments)
	return Name{segments: out}, nil
}

// MustParse is Parse, panicking on error. Reserved for tests and
// compile-time-known names.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Random returns a single-segment name prefixed with prefix and suffixed
// with a random UUID, for tests that need a cell name guaranteed not to
// collide with another concurrently running test's cells sharing the
// same host cgroup tree.
func Random(prefix string) Name {
	return MustParse(prefix + "-" + uuid.NewString())
}

// String renders the name back to its canonical slash-separated form.
func (n Name) String() string {
	return strings.Join(n.segments, "/")
}

// Segments returns the ordered list of labels. The returned slice is a
// copy; mutating it does not affect n.
func (n Name) Segments() []string {
	out := make([]string, len(n.segments))
	copy(out, n.segments)
	return out
}

// IsZero reports whether n is the zero value (never produced by Parse).
func (n Name) IsZero() bool {
	return len(n.segments) == 0
}

// Leaf returns the last segment of the name.
func (n Name) Leaf() string {
	if len(n.segments) == 0 {
		return ""
	}
	return n.segments[len(n.segments)-1]
}

// Root returns a Name consisting of only the first segment.
func (n Name) Root() Name {
	if len(n.segments) == 0 {
		return Name{}
	}
	return Name{segments: []string{n.segments[0]}}
}

// IsChildOf reports whether n's immediate prefix equals parent, i.e.
// n has exactly one more segment than parent and shares parent's prefix.
func (n Name) IsChildOf(parent Name) bool {
	if len(n.segments) != len(parent.segments)+1 {
		return false
	}
	for i, seg := range parent.segments {
		if n.segments[i] != seg {
			return false
		}
	}
	return true
}

// HasPrefix reports whether n starts with the segments of prefix (prefix
// may equal n).
func (n Name) HasPrefix(prefix Name) bool {
	if len(prefix.segments) > len(n.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if n.segments[i] != seg {
			return false
		}
	}
	return true
}

// ToChild returns the next hop below n on the way to descendant: n's
// segments plus descendant's root segment. The precondition is that
// descendant starts with n; violating it returns an error rather than
// panicking, since this is driven by untrusted RPC input during recursive
// descent.
func (n Name) ToChild(descendant Name) (Name, error) {
	if !descendant.HasPrefix(n) || len(descendant.segments) <= len(n.segments) {
		return Name{}, errors.Errorf("%q is not a descendant of %q", descendant, n)
	}
	segs := make([]string, len(n.segments)+1)
	copy(segs, n.segments)
	segs[len(n.segments)] = descendant.segments[len(n.segments)]
	return Name{segments: segs}, nil
}

// Child returns the name formed by appending a single leaf label to n,
// validating the label against the same grammar Parse enforces on every
// segment.
func (n Name) Child(leaf string) (Name, error) {
	if !segmentRegex.MatchString(leaf) {
		return Name{}, &ValidationError{Field: "cell_name", Value: leaf, Cause: "must match the DNS label grammar (1-63 chars, alphanumeric/hyphen, no leading/trailing hyphen)"}
	}
	segs := make([]string, len(n.segments)+1)
	copy(segs, n.segments)
	segs[len(n.segments)] = leaf
	return Name{segments: segs}, nil
}

// Tail returns the portion of n below head, where head is n's first
// segment's worth of ancestry removed. It is the inverse helper used by
// the registry's (head, tail) recursive-descent split: head must be a
// single-segment prefix of n (typically n.Root()).
func (n Name) Tail(head Name) (Name, bool) {
	if len(head.segments) == 0 || len(head.segments) >= len(n.segments) {
		return Name{}, false
	}
	if !n.HasPrefix(head) {
		return Name{}, false
	}
	segs := make([]string, len(n.segments)-len(head.segments))
	copy(segs, n.segments[len(head.segments):])
	return Name{segments: segs}, true
}

// Equal reports whether n and other name the same cell.
func (n Name) Equal(other Name) bool {
	if len(n.segments) != len(other.segments) {
		return false
	}
	for i, seg := range n.segments {
		if seg != other.segments[i] {
			return false
		}
	}
	return true
}

// Depth returns the number of segments in the name.
func (n Name) Depth() int {
	return len(n.segments)
}
