package cellservice

import "github.com/pkg/errors"

// wrapf is a thin local alias so callers read like the rest of the
// package's layer: pkg/errors.Wrapf at the service boundary, adding the
// offending cell/executable name to whatever the lower layer returned.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
