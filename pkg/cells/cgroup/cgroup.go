//go:build linux

// Package cgroup implements the Cgroup handle: creation, task attachment,
// stat reads, and deletion of the cgroup v2 subtree backing one cell.
package cgroup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cgroup2 "github.com/containerd/cgroups/v3/cgroup2"
	"github.com/containerd/cgroups/v3/cgroup2/stats"
	"github.com/sirupsen/logrus"

	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
	"github.com/aurae-runtime/aurae/pkg/cells/cgroupspec"
)

// DefaultRoot is the default cgroup v2 mountpoint.
const DefaultRoot = "/sys/fs/cgroup"

// LeafName is the trailing directory every cell's cgroup path ends with.
// cgroup v2 forbids a node from holding both processes and child groups,
// so a cell's own processes always live one level below the cell's
// interior (subgroup-bearing) directory.
const LeafName = "_"

// Cgroup is a handle to a concrete on-host cgroup v2 directory.
type Cgroup struct {
	root string
	name cellname.Name
	mgr  *cgroup2.Manager
}

// Path returns the interior (subgroup-bearing) directory for this cell,
// e.g. "/sys/fs/cgroup/a/b/c".
func (c *Cgroup) Path() string {
	return filepath.Join(c.root, filepath.FromSlash(c.name.String()))
}

// LeafPath returns the directory processes actually run in,
// e.g. "/sys/fs/cgroup/a/b/c/_".
func (c *Cgroup) LeafPath() string {
	return filepath.Join(c.Path(), LeafName)
}

func group(name cellname.Name) string {
	return "/" + strings.Join(name.Segments(), "/") + "/" + LeafName
}

// Exists reports whether a directory already exists at name's leaf path
// under root, without regard to whether it is tracked by any in-memory
// Cell. Used to detect the CgroupIsNotACell / CgroupNotFound divergence
// between host state and the registry.
func Exists(root string, name cellname.Name) bool {
	leaf := filepath.Join(root, filepath.FromSlash(name.String()), LeafName)
	info, err := os.Stat(leaf)
	return err == nil && info.IsDir()
}

// Create creates the cgroup v2 subtree for name under root, writing every
// controller knob present in spec, and returns a handle to it. On failure
// it returns no handle; it removes the leaf directory, and the interior
// directory too when that holds no other cgroups, so a failed Create
// leaves nothing behind for the caller to roll back.
func Create(root string, name cellname.Name, spec cgroupspec.Spec) (*Cgroup, error) {
	if root == "" {
		root = DefaultRoot
	}

	resources := toResources(spec)

	mgr, err := cgroup2.NewManager(root, group(name), resources)
	if err != nil {
		interior := filepath.Join(root, filepath.FromSlash(name.String()))
		_ = os.Remove(filepath.Join(interior, LeafName))
		_ = os.Remove(interior)
		return nil, wrap(KindCreate, name, err)
	}

	logrus.Debugf("cgroup: created %s with controllers %v", group(name), spec.EnabledControllers())

	return &Cgroup{root: root, name: name, mgr: mgr}, nil
}

// Load attaches a handle to an already-existing cgroup directory, used
// when a parent cell re-discovers a previously allocated child's cgroup
// (e.g. after the registry is rebuilt). It fails with KindNotFound if the
// leaf directory is absent.
func Load(root string, name cellname.Name) (*Cgroup, error) {
	if root == "" {
		root = DefaultRoot
	}
	if !Exists(root, name) {
		return nil, wrap(KindNotFound, name, os.ErrNotExist)
	}
	mgr, err := cgroup2.LoadManager(root, group(name))
	if err != nil {
		return nil, wrap(KindCreate, name, err)
	}
	return &Cgroup{root: root, name: name, mgr: mgr}, nil
}

// AddTask moves pid into this cell's leaf cgroup, i.e. writes it to
// cgroup.procs.
func (c *Cgroup) AddTask(pid int) error {
	if err := c.mgr.AddProc(uint64(pid)); err != nil {
		return wrap(KindAddTask, c.name, err)
	}
	return nil
}

// Stats reads the cgroup's current resource usage.
func (c *Cgroup) Stats() (*stats.Metrics, error) {
	m, err := c.mgr.Stat()
	if err != nil {
		return nil, wrap(KindReadStats, c.name, err)
	}
	return m, nil
}

// Delete removes the `_` leaf and then the cell's interior directory,
// satisfying cgroup v2's rule that an inner node may not simultaneously
// hold processes and subgroups once both are gone. If the leaf is already
// missing on the host, Delete reports KindNotFound so the caller (Cell.Free)
// can still remove its in-memory bookkeeping and continue.
func (c *Cgroup) Delete() error {
	if !Exists(c.root, c.name) {
		return wrap(KindNotFound, c.name, os.ErrNotExist)
	}
	if err := c.mgr.Delete(); err != nil {
		return wrap(KindDelete, c.name, err)
	}
	// mgr.Delete only removes the leaf; remove the interior directory too,
	// provided no other descendant cells still live under it. cgroupfs
	// lists its control files in every directory, so only subdirectories
	// count as something still living there.
	interior := c.Path()
	if entries, err := os.ReadDir(interior); err == nil {
		hasSubgroup := false
		for _, e := range entries {
			if e.IsDir() {
				hasSubgroup = true
				break
			}
		}
		if !hasSubgroup {
			if err := os.Remove(interior); err != nil && !os.IsNotExist(err) {
				return wrap(KindDelete, c.name, err)
			}
		}
	}
	return nil
}

func toResources(spec cgroupspec.Spec) *cgroup2.Resources {
	res := &cgroup2.Resources{}

	if spec.CPU != nil {
		cpu := &cgroup2.CPU{}
		if spec.CPU.Weight != nil {
			w := uint64(*spec.CPU.Weight)
			cpu.Weight = &w
		}
		if spec.CPU.Max != nil {
			cpu.Max = cgroup2.CPUMax(fmt.Sprintf("%d %d", int64(*spec.CPU.Max), cgroupspec.DefaultCPUPeriodMicros))
		}
		if spec.CPUSet != nil {
			if spec.CPUSet.Cpus != nil {
				cpu.Cpus = spec.CPUSet.Cpus.String()
			}
			if spec.CPUSet.Mems != nil {
				cpu.Mems = spec.CPUSet.Mems.String()
			}
		}
		res.CPU = cpu
	} else if spec.CPUSet != nil {
		cpu := &cgroup2.CPU{}
		if spec.CPUSet.Cpus != nil {
			cpu.Cpus = spec.CPUSet.Cpus.String()
		}
		if spec.CPUSet.Mems != nil {
			cpu.Mems = spec.CPUSet.Mems.String()
		}
		res.CPU = cpu
	}

	if spec.Memory != nil {
		mem := &cgroup2.Memory{}
		if spec.Memory.Min != nil {
			v := int64(*spec.Memory.Min)
			mem.Min = &v
		}
		if spec.Memory.Low != nil {
			v := int64(*spec.Memory.Low)
			mem.Low = &v
		}
		if spec.Memory.High != nil {
			v := int64(*spec.Memory.High)
			mem.High = &v
		}
		if spec.Memory.Max != nil {
			v := int64(*spec.Memory.Max)
			mem.Max = &v
		}
		res.Memory = mem
	}

	return res
}
