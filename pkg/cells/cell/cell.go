//go:build linux

// Package cell implements the hierarchical runtime node: a named,
// resource-limited execution context pairing a cgroup v2 subtree, an
// isolation configuration, a nested daemon, a child-cells map, and an
// executables registry.
package cell

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
	"github.com/aurae-runtime/aurae/pkg/cells/cgroup"
	"github.com/aurae-runtime/aurae/pkg/cells/executables"
	"github.com/aurae-runtime/aurae/pkg/cells/nestedauraed"
	"github.com/aurae-runtime/aurae/pkg/shutdown"
)

// State is a Cell's lifecycle state. It only ever moves forward:
// Unallocated -> Allocated -> Freed.
type State int

const (
	Unallocated State = iota
	Allocated
	Freed
)

func (s State) String() string {
	switch s {
	case Unallocated:
		return "Unallocated"
	case Allocated:
		return "Allocated"
	case Freed:
		return "Freed"
	default:
		return "Unknown"
	}
}

// Env bundles the host configuration every Cell needs to allocate itself,
// threaded down from cmd/auraed rather than read from globals. Shutdown
// is the process-wide broadcaster every executable the cell spawns
// subscribes to, so a shutdown signal kills running processes without
// the caller having to walk the whole cell tree first; it may be nil in
// tests that never exercise the shutdown path.
type Env struct {
	CgroupRoot string
	RuntimeDir string
	Shutdown   *shutdown.Broadcaster
}

// Cell is a single node of the hierarchy with its own state machine. It
// owns its Cgroup, its NestedAuraed, its child Cells, and its Executables
// registry; there are no parent pointers, so a parent is reached only by
// re-walking from the root registry.
type Cell struct {
	mu   sync.Mutex
	env  Env
	name cellname.Name
	spec Spec

	state State
	cg    *cgroup.Cgroup
	nd    *nestedauraed.NestedAuraed

	children map[string]*Cell
	execs    *executables.Executables
}

// New constructs a Cell in the Unallocated state. Allocate must be called
// before it does anything else.
func New(env Env, name cellname.Name, spec Spec) *Cell {
	return &Cell{
		env:      env,
		name:     name,
		spec:     spec,
		state:    Unallocated,
		children: make(map[string]*Cell),
		execs:    executables.New(env.Shutdown),
	}
}

// Name returns the cell's fully qualified name.
func (c *Cell) Name() cellname.Name {
	return c.name
}

// State returns the cell's current lifecycle state.
func (c *Cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Allocate creates the cgroup, clones the nested daemon, places it in the
// cgroup's leaf, and transitions to Allocated. On any intermediate
// failure, partially created resources are rolled back and the cell stays
// Unallocated.
func (c *Cell) Allocate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Unallocated {
		return wrap(KindFailedToAllocate, c.name.String(), errors.Errorf("cell is %s, not Unallocated", c.state))
	}

	if cgroup.Exists(c.env.CgroupRoot, c.name) {
		return wrap(KindCgroupIsNotACell, c.name.String(), nil)
	}

	cg, err := cgroup.Create(c.env.CgroupRoot, c.name, c.spec.Cgroup)
	if err != nil {
		return wrap(KindFailedToAllocate, c.name.String(), err)
	}

	nd, err := nestedauraed.Start(ctx, c.name.String(), c.spec.Isolation, cg.LeafPath(), c.env.RuntimeDir)
	if err != nil {
		if delErr := cg.Delete(); delErr != nil {
			logrus.Warnf("cell %q: rollback cgroup delete failed: %v", c.name, delErr)
		}
		return wrap(KindAbortedAllocate, c.name.String(), err)
	}

	c.cg = cg
	c.nd = nd
	c.state = Allocated

	logrus.Infof("cell %q: allocated", c.name)
	return nil
}

// AllocateChild atomically inserts a new child cell under this one. The
// child name must not already exist, and this cell must be Allocated.
func (c *Cell) AllocateChild(ctx context.Context, leaf string, spec Spec) (*Cell, error) {
	c.mu.Lock()
	if c.state != Allocated {
		c.mu.Unlock()
		return nil, wrap(KindCellNotAllocated, c.name.String(), nil)
	}
	if _, exists := c.children[leaf]; exists {
		c.mu.Unlock()
		return nil, wrap(KindCellExists, leaf, nil)
	}

	childName, err := c.name.Child(leaf)
	if err != nil {
		c.mu.Unlock()
		return nil, wrap(KindFailedToAllocate, leaf, err)
	}
	child := New(c.env, childName, spec)
	c.children[leaf] = child
	c.mu.Unlock()

	if err := child.Allocate(ctx); err != nil {
		c.mu.Lock()
		delete(c.children, leaf)
		c.mu.Unlock()
		return nil, err
	}

	return child, nil
}

// Child returns the immediate child registered under leaf, if any.
func (c *Cell) Child(leaf string) (*Cell, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	child, ok := c.children[leaf]
	return child, ok
}

// RemoveChild drops leaf from this cell's children map without freeing
// it, used by the registry once it has already freed the child itself and
// only needs to detach it from its parent's bookkeeping.
func (c *Cell) RemoveChild(leaf string) {
	c.mu.Lock()
	delete(c.children, leaf)
	c.mu.Unlock()
}

// Free recursively tears the cell down: broadcast-free on every child,
// broadcast-stop on the executables registry, kill and reap the nested
// daemon, then delete the cgroup. It transitions to Freed and is
// idempotent once there.
func (c *Cell) Free() error {
	c.mu.Lock()
	if c.state == Freed {
		c.mu.Unlock()
		return nil
	}
	children := c.children
	c.children = make(map[string]*Cell)
	execs := c.execs
	nd := c.nd
	cg := c.cg
	wasAllocated := c.state == Allocated
	c.mu.Unlock()

	for leaf, child := range children {
		if err := child.Free(); err != nil {
			logrus.Warnf("cell %q: child %q failed to free (best-effort): %v", c.name, leaf, err)
		}
	}

	if !wasAllocated {
		c.mu.Lock()
		c.state = Freed
		c.mu.Unlock()
		return nil
	}

	if execs != nil {
		execs.BroadcastStop()
	}

	if nd != nil {
		if err := nd.Kill(); err != nil {
			logrus.Warnf("cell %q: nested daemon kill failed (best-effort): %v", c.name, err)
		}
		if err := nd.Wait(); err != nil {
			logrus.Warnf("cell %q: nested daemon reap failed (best-effort): %v", c.name, err)
		}
	}

	var freeErr error
	if cg != nil {
		if err := cg.Delete(); err != nil {
			if cgroup.IsNotFound(err) {
				freeErr = wrap(KindCgroupNotFound, c.name.String(), err)
			} else {
				freeErr = wrap(KindFailedToFree, c.name.String(), err)
			}
		}
	}

	c.mu.Lock()
	c.state = Freed
	c.mu.Unlock()

	logrus.Infof("cell %q: freed", c.name)
	return freeErr
}

// BroadcastKill recursively kills every executable and nested daemon in
// this cell and its descendants without freeing any cgroup, leaving the
// cells themselves Allocated. It is the harder-edged sibling of Free,
// useful for an operator-triggered "stop everything running" that should
// not also tear down the resource reservations.
func (c *Cell) BroadcastKill() {
	c.mu.Lock()
	children := make([]*Cell, 0, len(c.children))
	for _, child := range c.children {
		children = append(children, child)
	}
	execs := c.execs
	nd := c.nd
	c.mu.Unlock()

	for _, child := range children {
		child.BroadcastKill()
	}

	if execs != nil {
		execs.BroadcastStop()
	}
	if nd != nil {
		if err := nd.Kill(); err != nil {
			logrus.Warnf("cell %q: broadcast kill of nested daemon failed (best-effort): %v", c.name, err)
		}
		_ = nd.Wait()
	}
}

// Start spawns an executable in this cell's scope.
func (c *Cell) Start(spec executables.Spec) (*executables.Executable, error) {
	c.mu.Lock()
	if c.state != Allocated {
		c.mu.Unlock()
		return nil, wrap(KindCellNotAllocated, c.name.String(), nil)
	}
	execs := c.execs
	c.mu.Unlock()
	return execs.Start(spec)
}

// Stop stops a previously started executable by name.
func (c *Cell) Stop(name executables.Name) (executables.ExitStatus, error) {
	c.mu.Lock()
	execs := c.execs
	c.mu.Unlock()
	return execs.Stop(name)
}

// Info is the result of a List call: a cell's own identity and spec plus
// its children, recursively.
type Info struct {
	Name     string
	State    State
	Spec     Spec
	Children []Info
}

// List returns this cell's own info together with its children's, via
// depth-first recursion. Sibling order is unspecified but stable within a
// single call.
func (c *Cell) List() Info {
	c.mu.Lock()
	name := c.name.String()
	state := c.state
	spec := c.spec
	children := make([]*Cell, 0, len(c.children))
	for _, child := range c.children {
		children = append(children, child)
	}
	c.mu.Unlock()

	info := Info{Name: name, State: state, Spec: spec}
	for _, child := range children {
		info.Children = append(info.Children, child.List())
	}
	return info
}
