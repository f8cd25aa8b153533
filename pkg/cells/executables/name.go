package executables

import "strings"

// maxNameLength bounds an executable's name. The original source carried a
// commented-out TASK_COMM_LEN-adjacent (15 byte) cap on this field; this
// port never truncates, so instead of silently shortening an over-length
// name it is rejected outright with a validation error.
const maxNameLength = 255

// Name identifies an executable uniquely within its owning cell.
type Name string

// ValidateName reports whether name is usable as an executable's key.
func ValidateName(name string) error {
	if name == "" {
		return wrap(KindValidation, name, errEmptyName)
	}
	if len(name) > maxNameLength {
		return wrap(KindValidation, name, errNameTooLong)
	}
	if strings.ContainsAny(name, "/\x00") {
		return wrap(KindValidation, name, errNameChars)
	}
	return nil
}

var (
	errEmptyName   = nameErr("executable name must not be empty")
	errNameTooLong = nameErr("executable name exceeds maximum length")
	errNameChars   = nameErr("executable name must not contain '/' or NUL")
)

type nameErr string

func (e nameErr) Error() string { return string(e) }
