//go:build linux

// Package cellservice implements the CellService façade: it receives
// fully qualified CellName strings over rpc.CellServiceServer and
// dispatches into the cell registry, translating between wire-shaped
// request/response structs and the Cell/Executable domain types.
package cellservice

import (
	"context"

	"github.com/pkg/errors"

	"github.com/aurae-runtime/aurae/pkg/cells/cell"
	"github.com/aurae-runtime/aurae/pkg/cells/cellname"
	"github.com/aurae-runtime/aurae/pkg/cells/cellregistry"
	"github.com/aurae-runtime/aurae/pkg/cells/executables"
	"github.com/aurae-runtime/aurae/pkg/rpc"
)

var errCellNotFound = errors.New("cell not found")

// Service implements rpc.CellServiceServer over a CellsCache.
type Service struct {
	cells cellregistry.CellsCache
}

// New returns a Service bound to the given cache.
func New(cells cellregistry.CellsCache) *Service {
	return &Service{cells: cells}
}

var _ rpc.CellServiceServer = (*Service)(nil)

func (s *Service) Allocate(ctx context.Context, req rpc.AllocateRequest) (rpc.AllocateResponse, error) {
	name, err := cellname.Parse(req.CellName)
	if err != nil {
		return rpc.AllocateResponse{}, wrapf(err, "allocate %q", req.CellName)
	}

	spec := cell.Spec{Cgroup: req.Cgroup, Isolation: req.Isolation}
	c, err := s.cells.Allocate(ctx, name, spec)
	if err != nil {
		return rpc.AllocateResponse{}, wrapf(err, "allocate %q", req.CellName)
	}

	return rpc.AllocateResponse{CellName: c.Name().String()}, nil
}

func (s *Service) Free(ctx context.Context, req rpc.FreeRequest) (rpc.FreeResponse, error) {
	name, err := cellname.Parse(req.CellName)
	if err != nil {
		return rpc.FreeResponse{}, wrapf(err, "free %q", req.CellName)
	}
	if err := s.cells.Free(name); err != nil {
		return rpc.FreeResponse{}, wrapf(err, "free %q", req.CellName)
	}
	return rpc.FreeResponse{}, nil
}

func (s *Service) Start(ctx context.Context, req rpc.StartRequest) (rpc.StartResponse, error) {
	name, err := cellname.Parse(req.CellName)
	if err != nil {
		return rpc.StartResponse{}, wrapf(err, "start %q in %q", req.ExecutableName, req.CellName)
	}
	c, ok := s.cells.Get(name)
	if !ok {
		return rpc.StartResponse{}, wrapf(errCellNotFound, "start %q in %q", req.ExecutableName, req.CellName)
	}

	exe, err := c.Start(executables.Spec{
		Name:        executables.Name(req.ExecutableName),
		Command:     req.Command,
		Args:        req.Args,
		Description: req.Description,
	})
	if err != nil {
		return rpc.StartResponse{}, wrapf(err, "start %q in %q", req.ExecutableName, req.CellName)
	}

	return rpc.StartResponse{Pid: exe.Pid()}, nil
}

func (s *Service) Stop(ctx context.Context, req rpc.StopRequest) (rpc.StopResponse, error) {
	name, err := cellname.Parse(req.CellName)
	if err != nil {
		return rpc.StopResponse{}, wrapf(err, "stop %q in %q", req.ExecutableName, req.CellName)
	}
	c, ok := s.cells.Get(name)
	if !ok {
		return rpc.StopResponse{}, wrapf(errCellNotFound, "stop %q in %q", req.ExecutableName, req.CellName)
	}

	status, err := c.Stop(executables.Name(req.ExecutableName))
	if err != nil {
		return rpc.StopResponse{}, wrapf(err, "stop %q in %q", req.ExecutableName, req.CellName)
	}

	return rpc.StopResponse{ExitCode: status.Code, Signal: status.Signal}, nil
}

func (s *Service) List(ctx context.Context, req rpc.ListRequest) (rpc.ListResponse, error) {
	reg, ok := s.cells.(*cellregistry.Registry)
	if !ok {
		out := make([]cell.Info, 0)
		for _, c := range s.cells.GetAll() {
			out = append(out, c.List())
		}
		return rpc.ListResponse{Cells: out}, nil
	}
	return rpc.ListResponse{Cells: reg.List()}, nil
}

// Shutdown runs the process-wide teardown policy: kill every running
// process first, then free every cell's resources.
func (s *Service) Shutdown() {
	s.cells.BroadcastKill()
	s.cells.BroadcastFree()
}
