//go:build linux

// Package cellregistry implements the root Cells registry: the process-wide
// singleton that owns every top-level Cell and resolves a fully qualified
// CellName down to the Cell it addresses by recursive (head, tail) descent.
package cellregistry

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
)

// ErrExists reports whether err denotes a duplicate cell name, whether
// the duplicate was top-level or nested.
func ErrExists(err error) bool { return cell.ErrExists(err) }

// ErrNotFound reports whether err denotes a cell name that does not
// resolve, whether the missing segment was top-level or nested.
func ErrNotFound(err error) bool { return cell.ErrNotFound(err) }

// Registry is the root Cells registry. All reads and writes serialize
// through a single mutex, giving root mutations a total order.
type Registry struct {
	mu   sync.Mutex
	env  cell.Env
	root map[string]*cell.Cell
}

// New returns an empty root registry.
func New(env cell.Env) *Registry {
	return &Registry{env: env, root: make(map[string]*cell.Cell)}
}

var _ CellsCache = (*Registry)(nil)

// Allocate creates the cell named name. If name has more than one
// segment, every ancestor segment must already denote an allocated cell;
// Allocate only ever creates the final segment, exactly as
// Cell.AllocateChild does for a single hop.
func (r *Registry) Allocate(ctx context.Context, name cellname.Name, spec cell.Spec) (*cell.Cell, error) {
	head := name.Root().Leaf()

	if name.Depth() == 1 {
		r.mu.Lock()
		if _, exists := r.root[head]; exists {
			r.mu.Unlock()
			return nil, wrap(cell.KindCellExists, name.String(), nil)
		}
		c := cell.New(r.env, name, spec)
		r.root[head] = c
		r.mu.Unlock()

		if err := c.Allocate(ctx); err != nil {
			r.mu.Lock()
			delete(r.root, head)
			r.mu.Unlock()
			return nil, err
		}
		return c, nil
	}

	r.mu.Lock()
	parent, ok := r.root[head]
	r.mu.Unlock()
	if !ok {
		return nil, wrap(cell.KindCellNotFound, head, nil)
	}

	leaf, parentCell, err := descend(parent, name)
	if err != nil {
		return nil, err
	}
	return parentCell.AllocateChild(ctx, leaf, spec)
}

// Free tears down the cell named name and detaches it from its parent's
// bookkeeping (or, for a top-level cell, from the root map).
func (r *Registry) Free(name cellname.Name) error {
	head := name.Root().Leaf()

	if name.Depth() == 1 {
		r.mu.Lock()
		c, ok := r.root[head]
		if ok {
			delete(r.root, head)
		}
		r.mu.Unlock()
		if !ok {
			return wrap(cell.KindCellNotFound, name.String(), nil)
		}
		return c.Free()
	}

	r.mu.Lock()
	parent, ok := r.root[head]
	r.mu.Unlock()
	if !ok {
		return wrap(cell.KindCellNotFound, head, nil)
	}

	leaf, parentCell, err := descend(parent, name)
	if err != nil {
		return err
	}
	child, ok := parentCell.Child(leaf)
	if !ok {
		return wrap(cell.KindCellNotFound, name.String(), nil)
	}
	if err := child.Free(); err != nil {
		parentCell.RemoveChild(leaf)
		return err
	}
	parentCell.RemoveChild(leaf)
	return nil
}

// Get resolves name to its Cell, walking the (head, tail) chain.
func (r *Registry) Get(name cellname.Name) (*cell.Cell, bool) {
	head := name.Root().Leaf()
	r.mu.Lock()
	c, ok := r.root[head]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	if name.Depth() == 1 {
		return c, true
	}
	tail, _ := name.Tail(name.Root())
	return walk(c, tail)
}

func walk(c *cell.Cell, tail cellname.Name) (*cell.Cell, bool) {
	if tail.Depth() == 0 {
		return c, true
	}
	next := tail.Root().Leaf()
	child, ok := c.Child(next)
	if !ok {
		return nil, false
	}
	rest, _ := tail.Tail(tail.Root())
	return walk(child, rest)
}

// descend walks from parent down to the immediate parent of name's leaf
// segment, returning that leaf segment and the Cell that should receive
// the leaf-level operation. Every intermediate segment must already exist.
func descend(parent *cell.Cell, name cellname.Name) (leaf string, owner *cell.Cell, err error) {
	tail, ok := name.Tail(name.Root())
	if !ok {
		return "", nil, wrap(cell.KindCellNotFound, name.String(), errors.Errorf("malformed path"))
	}
	cur := parent
	for tail.Depth() > 1 {
		head := tail.Root().Leaf()
		next, ok := cur.Child(head)
		if !ok {
			return "", nil, wrap(cell.KindCellNotFound, name.String(), errors.Errorf("no such cell %q", head))
		}
		cur = next
		tail, _ = tail.Tail(tail.Root())
	}
	return tail.Leaf(), cur, nil
}

// GetAll returns every top-level cell. Order is unspecified.
func (r *Registry) GetAll() []*cell.Cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cell.Cell, 0, len(r.root))
	for _, c := range r.root {
		out = append(out, c)
	}
	return out
}

// BroadcastFree frees every top-level cell (recursively freeing their
// descendants) and empties the root map. Used during process-wide
// shutdown.
func (r *Registry) BroadcastFree() {
	r.mu.Lock()
	cells := r.root
	r.root = make(map[string]*cell.Cell)
	r.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(cells))
	for _, c := range cells {
		c := c
		go func() {
			defer wg.Done()
			_ = c.Free()
		}()
	}
	wg.Wait()
}

// BroadcastKill kills every running process across every cell without
// freeing any cgroup, leaving the registry's cells Allocated.
func (r *Registry) BroadcastKill() {
	for _, c := range r.GetAll() {
		c.BroadcastKill()
	}
}

// List returns the full forest: every top-level cell's Info, recursively.
func (r *Registry) List() []cell.Info {
	cells := r.GetAll()
	out := make([]cell.Info, 0, len(cells))
	for _, c := range cells {
		out = append(out, c.List())
	}
	return out
}
