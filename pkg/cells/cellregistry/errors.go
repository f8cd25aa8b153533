package cellregistry

import "github.com/aurae-runtime/aurae/pkg/cells/cell"

// wrap constructs a *cell.Error, so that a caller resolving a name through
// the registry branches on cell.ErrExists/cell.ErrNotFound exactly as it
// would for an error returned directly from a Cell method — whether the
// cell addressed is top-level or nested several hops deep makes no
// difference to the Kind a caller observes.
func wrap(kind cell.Kind, name string, err error) error {
	return cell.Wrap(kind, name, err)
}
