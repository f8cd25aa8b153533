//go:build linux

package cell

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
	"github.com/aurae-runtime/aurae/pkg/cells/executables"
)

// requireCgroupV2 skips tests that need a real cgroup v2 hierarchy and
// root privileges to create one, which CI containers frequently lack.
func requireCgroupV2(t *testing.T) Env {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("requires root to create cgroups")
	}
	if _, err := os.Stat("/sys/fs/cgroup/cgroup.controllers"); err != nil {
		t.Skip("cgroup v2 not mounted")
	}
	dir := t.TempDir()
	return Env{CgroupRoot: "/sys/fs/cgroup", RuntimeDir: dir}
}

func TestCellStateMachineRejectsDoubleAllocate(t *testing.T) {
	env := requireCgroupV2(t)
	name := cellname.Random("test-cell")
	c := New(env, name, Spec{})

	require.NoError(t, c.Allocate(context.Background()))
	defer c.Free()

	assert.Equal(t, Allocated, c.State())
	assert.Error(t, c.Allocate(context.Background()))
}

func TestAllocateChildRejectsDuplicate(t *testing.T) {
	env := requireCgroupV2(t)
	name := cellname.Random("test-parent")
	c := New(env, name, Spec{})
	require.NoError(t, c.Allocate(context.Background()))
	defer c.Free()

	_, err := c.AllocateChild(context.Background(), "child", Spec{})
	require.NoError(t, err)

	_, err = c.AllocateChild(context.Background(), "child", Spec{})
	require.Error(t, err)
	assert.True(t, ErrExists(err))
}

func TestFreeIsIdempotent(t *testing.T) {
	env := requireCgroupV2(t)
	name := cellname.Random("test-idem")
	c := New(env, name, Spec{})
	require.NoError(t, c.Allocate(context.Background()))

	require.NoError(t, c.Free())
	assert.Equal(t, Freed, c.State())
	require.NoError(t, c.Free())
}

func TestFreeRecursesToChildren(t *testing.T) {
	env := requireCgroupV2(t)
	name := cellname.Random("test-recurse")
	c := New(env, name, Spec{})
	require.NoError(t, c.Allocate(context.Background()))

	child, err := c.AllocateChild(context.Background(), "child", Spec{})
	require.NoError(t, err)

	require.NoError(t, c.Free())
	assert.Equal(t, Freed, child.State())
}

func TestStartOnUnallocatedCellFails(t *testing.T) {
	name := cellname.MustParse("test-unalloc")
	c := New(Env{}, name, Spec{})

	_, err := c.Start(executables.Spec{Name: "x", Command: "/bin/true"})
	require.Error(t, err)
	assert.True(t, ErrNotAllocated(err))
}
