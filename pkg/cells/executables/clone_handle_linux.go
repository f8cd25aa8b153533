//go:build linux

package executables

import "golang.org/x/sys/unix"

// cloneHandle supervises a process produced by clone(2) directly, where
// there is no language-level child handle to call Kill/Wait through.
// SIGKILL must be delivered with kill(2) on the pid, and reaping must
// retry waitpid across EINTR until the process has truly exited.
type cloneHandle struct {
	pid int
}

func (h *cloneHandle) Pid() int { return h.pid }

func (h *cloneHandle) Kill() error {
	if err := unix.Kill(h.pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}

func (h *cloneHandle) Wait() (ExitStatus, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(h.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err == unix.ECHILD {
			return ExitStatus{}, nil
		}
		if err != nil {
			return ExitStatus{}, err
		}
		status := ExitStatus{Code: ws.ExitStatus()}
		if ws.Signaled() {
			status.Signal = ws.Signal().String()
		}
		return status, nil
	}
}
