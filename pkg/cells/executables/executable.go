// Package executables is a per-cell in-memory registry of long-running
// child processes, each with its own stdout/stderr pump mirroring output
// into a named broadcast channel.
package executables

import (
	"bufio"
	"io"
	"os/exec"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is an Executable's lifecycle state. Transitions only ever move
// forward: Init -> Started -> Stopped.
type State int

const (
	Init State = iota
	Started
	Stopped
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case Started:
		return "Started"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// ExitStatus is the recorded outcome of a stopped executable.
type ExitStatus struct {
	Code   int
	Signal string
}

// handle abstracts the two ways a child process can be signalled and
// reaped: a language-level *exec.Cmd (fork+exec) or a bare pid produced by
// clone(2) elsewhere, which must go through kill(2)/waitpid directly.
type handle interface {
	Pid() int
	Kill() error
	Wait() (ExitStatus, error)
}

// Executable is one supervised long-running process.
type Executable struct {
	mu    sync.Mutex
	spec  Spec
	state State
	pid   int
	hub   *Hub
	exit  ExitStatus

	handle handle
	done   chan struct{}
}

// newExecutable constructs an Executable in the Init state. It does not
// spawn anything; call Start to do that.
func newExecutable(spec Spec, hub *Hub) *Executable {
	return &Executable{spec: spec, state: Init, hub: hub}
}

// Name returns the executable's registry key.
func (e *Executable) Name() Name { return e.spec.Name }

// State returns the executable's current lifecycle state.
func (e *Executable) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pid returns the host-visible pid, valid once Started.
func (e *Executable) Pid() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pid
}

// ExitStatus returns the recorded exit outcome, valid once Stopped.
func (e *Executable) ExitStatus() ExitStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exit
}

// Start spawns the executable's command with piped stdout/stderr and
// begins the two line-pump goroutines. On any failure the executable is
// left in Init and the caller does not register it, so no half-started
// entry is left behind.
func (e *Executable) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Init {
		return errors.Errorf("executable %q: start called from state %s", e.spec.Name, e.state)
	}

	cmd := exec.Command(e.spec.Command, e.spec.Args...)
	cmd.Dir = "/"

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrapf(err, "executable %q: stdout pipe", e.spec.Name)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrapf(err, "executable %q: stderr pipe", e.spec.Name)
	}

	if err := cmd.Start(); err != nil {
		return wrap(KindFailedToStart, string(e.spec.Name), err)
	}

	e.handle = &execHandle{cmd: cmd}
	e.pid = cmd.Process.Pid
	e.state = Started
	e.done = make(chan struct{})

	var pumps sync.WaitGroup
	pumps.Add(2)
	go e.pump(stdout, string(e.spec.Name)+"::stdout", &pumps)
	go e.pump(stderr, string(e.spec.Name)+"::stderr", &pumps)

	go func() {
		pumps.Wait()
		close(e.done)
	}()

	logrus.Infof("executable %q: started pid %d", e.spec.Name, e.pid)
	return nil
}

// AdoptClonedChild makes this Executable supervise a process that was
// produced by clone(2) rather than by Start's own fork+exec, so that
// Kill/Wait go through the pid-based kill(2)/waitpid path instead of the
// exec.Cmd one. Used when a cell's isolated scope has already cloned the
// process and only wants it registered for supervision.
func (e *Executable) AdoptClonedChild(pid int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handle = &cloneHandle{pid: pid}
	e.pid = pid
	e.state = Started
	e.done = make(chan struct{})
	close(e.done)
}

func (e *Executable) pump(r io.Reader, channel string, wg *sync.WaitGroup) {
	defer wg.Done()
	defer e.hub.Close(channel)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e.hub.Publish(channel, scanner.Text())
	}
}

// Kill issues SIGKILL via the appropriate path for how the child was
// produced, awaits the stdout/stderr pumps, records the exit status, and
// transitions to Stopped. Calling Kill more than once is safe; the second
// call observes the already-recorded state and returns it without
// resignalling a pid that has already been waited on, since pid reuse
// makes it unsafe to signal again.
func (e *Executable) Kill() (ExitStatus, error) {
	e.mu.Lock()
	if e.state == Stopped {
		exit := e.exit
		e.mu.Unlock()
		return exit, nil
	}
	if e.state != Started {
		e.mu.Unlock()
		return ExitStatus{}, errors.Errorf("executable %q: kill called from state %s", e.spec.Name, e.state)
	}
	h := e.handle
	done := e.done
	e.mu.Unlock()

	killErr := h.Kill()
	exit, waitErr := h.Wait()
	if done != nil {
		<-done
	}

	e.mu.Lock()
	e.exit = exit
	e.state = Stopped
	e.mu.Unlock()

	if killErr != nil {
		return exit, errors.Wrapf(killErr, "executable %q: kill", e.spec.Name)
	}
	if waitErr != nil {
		return exit, errors.Wrapf(waitErr, "executable %q: wait", e.spec.Name)
	}
	return exit, nil
}

// execHandle wraps an os/exec-spawned child.
type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Pid() int { return h.cmd.Process.Pid }

func (h *execHandle) Kill() error {
	return h.cmd.Process.Kill()
}

func (h *execHandle) Wait() (ExitStatus, error) {
	err := h.cmd.Wait()
	status := ExitStatus{}
	if h.cmd.ProcessState != nil {
		status.Code = h.cmd.ProcessState.ExitCode()
		if ws, ok := h.cmd.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			status.Signal = ws.Signal().String()
		}
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		status.Code = exitErr.ExitCode()
		return status, nil
	}
	if err != nil {
		return status, err
	}
	return status, nil
}
