package cellregistry

import (
	"context"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
)

// CellsCache is the contract the root registry and CellService depend on.
// It exists as an interface, rather than a concrete *Registry everywhere,
// so that RPC handlers and tests can be written against a fake.
type CellsCache interface {
	Allocate(ctx context.Context, name cellname.Name, spec cell.Spec) (*cell.Cell, error)
	Free(name cellname.Name) error
	Get(name cellname.Name) (*cell.Cell, bool)
	GetAll() []*cell.Cell
	BroadcastFree()
	BroadcastKill()
}
