//go:build linux

package cellservice

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cellregistry"
	"github.com/aurae-runtime/aurae/pkg/rpc"
)

func requireCgroupV2(t *testing.T) *cellregistry.Registry {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("requires root to create cgroups")
	}
	if _, err := os.Stat("/sys/fs/cgroup/cgroup.controllers"); err != nil {
		t.Skip("cgroup v2 not mounted")
	}
	env := cell.Env{CgroupRoot: "/sys/fs/cgroup", RuntimeDir: t.TempDir()}
	return cellregistry.New(env)
}

func TestServiceAllocateFreeRoundTrip(t *testing.T) {
	reg := requireCgroupV2(t)
	svc := New(reg)
	ctx := context.Background()

	allocResp, err := svc.Allocate(ctx, rpc.AllocateRequest{CellName: "svc-test-" + t.Name()})
	require.NoError(t, err)
	assert.NotEmpty(t, allocResp.CellName)

	_, err = svc.Free(ctx, rpc.FreeRequest{CellName: allocResp.CellName})
	require.NoError(t, err)
}

func TestServiceStartStopExecutable(t *testing.T) {
	reg := requireCgroupV2(t)
	svc := New(reg)
	ctx := context.Background()

	allocResp, err := svc.Allocate(ctx, rpc.AllocateRequest{CellName: "svc-exe-" + t.Name()})
	require.NoError(t, err)
	defer svc.Free(ctx, rpc.FreeRequest{CellName: allocResp.CellName})

	startResp, err := svc.Start(ctx, rpc.StartRequest{
		CellName:       allocResp.CellName,
		ExecutableName: "sleeper",
		Command:        "sleep",
		Args:           []string{"30"},
	})
	require.NoError(t, err)
	assert.NotZero(t, startResp.Pid)

	_, err = svc.Stop(ctx, rpc.StopRequest{CellName: allocResp.CellName, ExecutableName: "sleeper"})
	require.NoError(t, err)
}

func TestServiceAllocateInvalidName(t *testing.T) {
	reg := requireCgroupV2(t)
	svc := New(reg)

	_, err := svc.Allocate(context.Background(), rpc.AllocateRequest{CellName: ""})
	require.Error(t, err)
}

func TestServiceList(t *testing.T) {
	reg := requireCgroupV2(t)
	svc := New(reg)
	ctx := context.Background()

	allocResp, err := svc.Allocate(ctx, rpc.AllocateRequest{CellName: "svc-list-" + t.Name()})
	require.NoError(t, err)
	defer svc.Free(ctx, rpc.FreeRequest{CellName: allocResp.CellName})

	listResp, err := svc.List(ctx, rpc.ListRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, listResp.Cells)
}
