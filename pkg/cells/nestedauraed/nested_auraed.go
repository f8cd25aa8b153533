//go:build linux

// Package nestedauraed launches a copy of the daemon binary as a child
// process in new Linux namespaces, places it inside its cell's cgroup
// leaf, and exposes the per-cell control socket the parent uses to
// forward RPCs scoped to that cell.
package nestedauraed

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/aurae-runtime/aurae/pkg/cells/isolation"
)

// ChildEnv is the environment variable a nested auraed instance checks at
// startup to learn it is running inside a cell rather than as the host
// daemon, and which leaf cell it belongs to. cmd/auraed's main() branches
// on this before doing anything else.
const (
	ChildEnv        = "AURAE_NESTED_CELL"
	ChildSocketEnv  = "AURAE_NESTED_SOCKET"
	ChildIsolEnv    = "AURAE_NESTED_ISOLATE_PROCESS"
	ChildIsolNetEnv = "AURAE_NESTED_ISOLATE_NETWORK"
)

// NestedAuraed is a handle to a running nested daemon instance.
type NestedAuraed struct {
	cmd        *exec.Cmd
	pid        int
	pidfd      int
	socketPath string
}

// Pid returns the host-visible pid of the nested daemon's init process.
func (n *NestedAuraed) Pid() int { return n.pid }

// SocketPath returns the unix-domain socket address the parent should
// dial to reach this nested daemon's control surface.
func (n *NestedAuraed) SocketPath() string { return n.socketPath }

// exePath resolves the daemon's own executable path. Resolution is lazy
// (done at clone time, not package init) because /proc may not yet be
// mounted when the package is first loaded during early daemon startup.
func exePath() (string, error) {
	p, err := os.Readlink("/proc/self/exe")
	if err != nil {
		return "", wrap("resolve /proc/self/exe", err)
	}
	return p, nil
}

func cloneFlags(ctl isolation.Controls) uintptr {
	var flags uintptr = unix.CLONE_NEWCGROUP
	if ctl.IsolateProcess {
		flags |= unix.CLONE_NEWNS | unix.CLONE_NEWUTS | unix.CLONE_NEWIPC | unix.CLONE_NEWPID
	}
	if ctl.IsolateNetwork {
		flags |= unix.CLONE_NEWNET
	}
	return flags
}

// Start clones a new auraed instance for leafName, places its pid in
// leafCgroupPath/cgroup.procs, and returns once the child's control
// socket is reachable (or the dial attempts are exhausted).
func Start(ctx context.Context, leafName string, ctl isolation.Controls, leafCgroupPath, runtimeDir string) (*NestedAuraed, error) {
	self, err := exePath()
	if err != nil {
		return nil, err
	}

	sockPath := filepath.Join(runtimeDir, "cells", leafName+".sock")
	if err := os.MkdirAll(filepath.Dir(sockPath), 0o750); err != nil {
		return nil, wrap("prepare nested socket dir", err)
	}
	_ = os.Remove(sockPath)

	cmd := exec.Command(self)
	cmd.Env = append(os.Environ(),
		ChildEnv+"="+leafName,
		ChildSocketEnv+"="+sockPath,
		ChildIsolEnv+"="+strconv.FormatBool(ctl.IsolateProcess),
		ChildIsolNetEnv+"="+strconv.FormatBool(ctl.IsolateNetwork),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	var pidfd int
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: syscall.CloneFlags(cloneFlags(ctl)),
		Pdeathsig:  syscall.SIGKILL,
		PidFD:      &pidfd,
	}

	if err := cmd.Start(); err != nil {
		return nil, wrap("clone nested auraed", err)
	}
	pid := cmd.Process.Pid

	procsFile := filepath.Join(leafCgroupPath, "cgroup.procs")
	if err := os.WriteFile(procsFile, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		_ = cmd.Process.Kill()
		return nil, wrap(fmt.Sprintf("add pid %d to %s", pid, procsFile), err)
	}

	n := &NestedAuraed{cmd: cmd, pid: pid, pidfd: pidfd, socketPath: sockPath}

	if err := n.awaitReachable(ctx); err != nil {
		_ = n.Kill()
		return nil, err
	}

	logrus.Infof("nested auraed: cell %q running as pid %d, socket %s", leafName, pid, sockPath)
	return n, nil
}

func (n *NestedAuraed) awaitReachable(ctx context.Context) error {
	deadline := time.Now().Add(10 * time.Second)
	for {
		conn, err := net.DialTimeout("unix", n.socketPath, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return wrap("dial nested control socket", err)
		}
		select {
		case <-ctx.Done():
			return wrap("dial nested control socket", ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Kill delivers SIGKILL to the nested daemon's init process using the pid
// directly (rather than the language-level child handle) since a
// clone-produced child must be signalled via kill(2) on the pid to be
// robust against the handle outliving the process table entry.
func (n *NestedAuraed) Kill() error {
	if err := unix.Kill(n.pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return wrap(fmt.Sprintf("kill pid %d", n.pid), err)
	}
	return nil
}

// Wait reaps the nested daemon's init process, retrying on EINTR until
// the process has truly exited. It must be called after Kill to avoid
// leaving a zombie.
func (n *NestedAuraed) Wait() error {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(n.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err == unix.ECHILD {
			// Already reaped (e.g. by exec.Cmd's own goroutine); not an error.
			return nil
		}
		if err != nil {
			return wrap(fmt.Sprintf("wait4 pid %d", n.pid), err)
		}
		return nil
	}
}
