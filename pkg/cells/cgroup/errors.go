package cgroup

import (
	"errors"
	"fmt"

	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
)

// Error is the typed error returned by every Cgroup operation. Kind lets
// callers branch on what went wrong without string-matching Error().
type Error struct {
	Kind Kind
	Name cellname.Name
	Err  error
}

// Kind enumerates the ways a Cgroup operation can fail, mirroring the
// original source's CgroupsError variants.
type Kind int

const (
	// KindCreate: the cgroup directory or its knob files could not be
	// created/written.
	KindCreate Kind = iota
	// KindAddTask: the pid could not be written to cgroup.procs.
	KindAddTask
	// KindDelete: the cgroup directory could not be removed.
	KindDelete
	// KindReadStats: the cgroup's metrics could not be read.
	KindReadStats
	// KindNotFound: the cgroup directory does not exist on the host.
	KindNotFound
	// KindNotACell: a directory exists on the host at this cell's path,
	// but no in-memory Cgroup handle owns it.
	KindNotACell
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindCreate:
		return fmt.Sprintf("cgroup %q could not be created: %v", e.Name, e.Err)
	case KindAddTask:
		return fmt.Sprintf("cgroup %q could not accept task: %v", e.Name, e.Err)
	case KindDelete:
		return fmt.Sprintf("cgroup %q could not be deleted: %v", e.Name, e.Err)
	case KindReadStats:
		return fmt.Sprintf("cgroup %q stats could not be read: %v", e.Name, e.Err)
	case KindNotFound:
		return fmt.Sprintf("cgroup %q not found on host", e.Name)
	case KindNotACell:
		return fmt.Sprintf("cgroup %q exists on host, but is not controlled by auraed", e.Name)
	default:
		return fmt.Sprintf("cgroup %q: %v", e.Name, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, name cellname.Name, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Name: name, Err: err}
}

// IsNotFound reports whether err is (or wraps) a KindNotFound Error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}

// IsNotACell reports whether err is (or wraps) a KindNotACell Error.
func IsNotACell(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotACell
}
