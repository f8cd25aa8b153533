package cgroupspec

import "fmt"

// ValidationError reports that a cgroup controller field violates its
// typed constraint (range, regex). It carries the offending field so a
// caller can report it as a failed precondition.
type ValidationError struct {
	Field string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Cause)
}

func invalid(field, cause string) error {
	return &ValidationError{Field: field, Cause: cause}
}
