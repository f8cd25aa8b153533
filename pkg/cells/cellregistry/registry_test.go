//go:build linux

package cellregistry

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
)

func requireCgroupV2(t *testing.T) cell.Env {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("requires root to create cgroups")
	}
	if _, err := os.Stat("/sys/fs/cgroup/cgroup.controllers"); err != nil {
		t.Skip("cgroup v2 not mounted")
	}
	return cell.Env{CgroupRoot: "/sys/fs/cgroup", RuntimeDir: t.TempDir()}
}

func TestAllocateTopLevelAndNested(t *testing.T) {
	env := requireCgroupV2(t)
	r := New(env)
	ctx := context.Background()

	root := cellname.Random("reg-test")
	_, err := r.Allocate(ctx, root, cell.Spec{})
	require.NoError(t, err)
	defer r.BroadcastFree()

	child := cellname.MustParse(root.String() + "/child")
	_, err = r.Allocate(ctx, child, cell.Spec{})
	require.NoError(t, err)

	got, ok := r.Get(child)
	require.True(t, ok)
	assert.Equal(t, child.String(), got.Name().String())
}

func TestAllocateDuplicateRootReturnsExists(t *testing.T) {
	env := requireCgroupV2(t)
	r := New(env)
	ctx := context.Background()

	name := cellname.Random("reg-dup")
	_, err := r.Allocate(ctx, name, cell.Spec{})
	require.NoError(t, err)
	defer r.BroadcastFree()

	_, err = r.Allocate(ctx, name, cell.Spec{})
	require.Error(t, err)
	assert.True(t, ErrExists(err))
}

func TestAllocateMissingAncestorFails(t *testing.T) {
	env := requireCgroupV2(t)
	r := New(env)

	name := cellname.MustParse(cellname.Random("no-such-parent").String() + "/child")
	_, err := r.Allocate(context.Background(), name, cell.Spec{})
	require.Error(t, err)
	assert.True(t, ErrNotFound(err))
}

func TestFreeRemovesFromRegistry(t *testing.T) {
	env := requireCgroupV2(t)
	r := New(env)
	ctx := context.Background()

	name := cellname.Random("reg-free")
	_, err := r.Allocate(ctx, name, cell.Spec{})
	require.NoError(t, err)

	require.NoError(t, r.Free(name))
	_, ok := r.Get(name)
	assert.False(t, ok)
}

func TestGetAllAndList(t *testing.T) {
	env := requireCgroupV2(t)
	r := New(env)
	ctx := context.Background()

	a := cellname.Random("reg-list-a")
	b := cellname.Random("reg-list-b")
	_, err := r.Allocate(ctx, a, cell.Spec{})
	require.NoError(t, err)
	_, err = r.Allocate(ctx, b, cell.Spec{})
	require.NoError(t, err)
	defer r.BroadcastFree()

	assert.Len(t, r.GetAll(), 2)
	assert.Len(t, r.List(), 2)
}
