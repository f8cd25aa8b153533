package executables

import (
	"errors"
	"fmt"
)

// Error is the typed error returned by Executables operations.
type Error struct {
	Kind Kind
	Name string
	Err  error
}

// Kind enumerates the ways an Executables operation can fail.
type Kind int

const (
	KindExists Kind = iota
	KindNotFound
	KindFailedToStart
	KindValidation
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindExists:
		return fmt.Sprintf("executable %q already exists", e.Name)
	case KindNotFound:
		return fmt.Sprintf("executable %q not found", e.Name)
	case KindFailedToStart:
		return fmt.Sprintf("executable %q failed to start: %v", e.Name, e.Err)
	case KindValidation:
		return fmt.Sprintf("executable %q invalid: %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("executable %q: %v", e.Name, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, name string, err error) error {
	return &Error{Kind: kind, Name: name, Err: err}
}

// ErrExists reports whether err is an already-exists failure.
func ErrExists(err error) bool { return isKind(err, KindExists) }

// ErrNotFound reports whether err is a not-found failure.
func ErrNotFound(err error) bool { return isKind(err, KindNotFound) }

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
