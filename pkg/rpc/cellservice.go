// Package rpc defines the Cell/Executable RPC surface as plain Go types
// and an interface. A generated gRPC service (outside this module's
// scope) binds to CellServiceServer; pkg/cellservice.Service implements
// it directly so the core logic is reachable without that transport layer
// being present.
package rpc

import (
	"context"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cgroupspec"
	"github.com/aurae-runtime/aurae/pkg/cells/isolation"
)

// AllocateRequest mirrors the external AllocateCell RPC's request body.
type AllocateRequest struct {
	CellName  string
	Cgroup    cgroupspec.Spec
	Isolation isolation.Controls
}

// AllocateResponse mirrors the external AllocateCell RPC's response body.
type AllocateResponse struct {
	CellName string
}

// FreeRequest mirrors the external FreeCell RPC's request body.
type FreeRequest struct {
	CellName string
}

// FreeResponse is intentionally empty; Free reports failure via error.
type FreeResponse struct{}

// StartRequest mirrors the external StartExecutable RPC's request body.
type StartRequest struct {
	CellName       string
	ExecutableName string
	Command        string
	Args           []string
	Description    string
}

// StartResponse carries the host-visible pid of the spawned executable.
type StartResponse struct {
	Pid int
}

// StopRequest mirrors the external StopExecutable RPC's request body.
type StopRequest struct {
	CellName       string
	ExecutableName string
}

// StopResponse carries the stopped executable's recorded exit status.
type StopResponse struct {
	ExitCode int
	Signal   string
}

// ListRequest is empty: List always walks the full forest from the root.
type ListRequest struct{}

// ListResponse carries the depth-first forest of cell info produced by
// the registry's List.
type ListResponse struct {
	Cells []cell.Info
}

// CellServiceServer is the interface a generated gRPC service stub binds
// to. Each method corresponds 1:1 to an external RPC.
type CellServiceServer interface {
	Allocate(ctx context.Context, req AllocateRequest) (AllocateResponse, error)
	Free(ctx context.Context, req FreeRequest) (FreeResponse, error)
	Start(ctx context.Context, req StartRequest) (StartResponse, error)
	Stop(ctx context.Context, req StopRequest) (StopResponse, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}
