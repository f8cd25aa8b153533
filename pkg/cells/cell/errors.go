package cell

import (
	"errors"
	"fmt"
)

// Error is the typed error returned by Cell operations.
type Error struct {
	Kind Kind
	Name string
	Err  error
}

// Kind enumerates the ways a Cell operation can fail.
type Kind int

const (
	KindCellExists Kind = iota
	KindCellNotFound
	KindCellNotAllocated
	KindFailedToAllocate
	KindAbortedAllocate
	KindFailedToKillChildren
	KindFailedToFree
	KindCgroupIsNotACell
	KindCgroupNotFound
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindCellExists:
		return fmt.Sprintf("cell %q already exists", e.Name)
	case KindCellNotFound:
		return fmt.Sprintf("cell %q not found", e.Name)
	case KindCellNotAllocated:
		return fmt.Sprintf("cell %q is not allocated", e.Name)
	case KindFailedToAllocate:
		return fmt.Sprintf("cell %q failed to allocate: %v", e.Name, e.Err)
	case KindAbortedAllocate:
		return fmt.Sprintf("cell %q allocation aborted, rolled back: %v", e.Name, e.Err)
	case KindFailedToKillChildren:
		return fmt.Sprintf("cell %q failed to kill child processes: %v", e.Name, e.Err)
	case KindFailedToFree:
		return fmt.Sprintf("cell %q failed to free: %v", e.Name, e.Err)
	case KindCgroupIsNotACell:
		return fmt.Sprintf("cgroup at %q exists but is not owned by any cell", e.Name)
	case KindCgroupNotFound:
		return fmt.Sprintf("cgroup for cell %q not found on host", e.Name)
	default:
		return fmt.Sprintf("cell %q: %v", e.Name, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, name string, err error) error {
	return &Error{Kind: kind, Name: name, Err: err}
}

// Wrap is wrap exported for cellregistry, so a root-level cell name
// resolution failure carries the same Kind a nested AllocateChild/Child
// lookup would return for the identical failure — a caller branches on
// Kind the same way regardless of whether the cell it asked about was
// top-level or nested.
func Wrap(kind Kind, name string, err error) error {
	return wrap(kind, name, err)
}

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func ErrExists(err error) bool             { return isKind(err, KindCellExists) }
func ErrNotFound(err error) bool           { return isKind(err, KindCellNotFound) }
func ErrNotAllocated(err error) bool       { return isKind(err, KindCellNotAllocated) }
func ErrCgroupIsNotACell(err error) bool   { return isKind(err, KindCgroupIsNotACell) }
func ErrCgroupNotFound(err error) bool     { return isKind(err, KindCgroupNotFound) }
