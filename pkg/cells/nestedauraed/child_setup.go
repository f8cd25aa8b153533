//go:build linux

package nestedauraed

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// IsChild reports whether the current process is itself a nested auraed
// instance, i.e. was launched by Start rather than by an operator.
func IsChild() bool {
	_, ok := os.LookupEnv(ChildEnv)
	return ok
}

// ChildCellName returns the cell name this process was cloned for, as
// passed to Start (cell.Allocate passes the full slash-separated name).
// Only meaningful when IsChild reports true.
func ChildCellName() string {
	return os.Getenv(ChildEnv)
}

// ChildSocketPath returns the unix socket path this process should bind
// its control surface to. Only meaningful when IsChild reports true.
func ChildSocketPath() string {
	return os.Getenv(ChildSocketEnv)
}

// SetupChild performs the namespace-local setup a nested auraed instance
// must do to itself before it starts serving: making its mount namespace
// private (so its own remounts never propagate back to the host); when it
// was cloned with network isolation, bringing its loopback interface up;
// and, when it was cloned with process isolation, mounting a fresh /proc
// and setting its own hostname/domainname to the cell's leaf name (the
// last segment of ChildCellName).
//
// cmd/auraed calls this once, immediately on startup, before binding any
// listener, whenever IsChild reports true. There is no separate pre-exec
// step as there would be with a manual clone+exec split: the clone and
// the exec into this same binary happen atomically under exec.Cmd, so the
// new namespaces are already active the moment this code runs.
func SetupChild() error {
	leaf := ChildCellName()
	if i := strings.LastIndex(leaf, "/"); i >= 0 {
		leaf = leaf[i+1:]
	}
	isolateProcess, _ := strconv.ParseBool(os.Getenv(ChildIsolEnv))

	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return wrap("remount / private", err)
	}

	if isolateNetwork, _ := strconv.ParseBool(os.Getenv(ChildIsolNetEnv)); isolateNetwork {
		if err := BringUpLoopback(); err != nil {
			return err
		}
	}

	if !isolateProcess {
		return nil
	}

	if err := unix.Mount("proc", "/proc", "proc", 0, ""); err != nil {
		return wrap("mount fresh /proc", err)
	}

	if err := unix.Sethostname([]byte(leaf)); err != nil {
		return wrap("sethostname", err)
	}
	if err := unix.Setdomainname([]byte(leaf)); err != nil {
		return wrap("setdomainname", err)
	}

	logrus.Debugf("nested auraed: namespace setup complete for cell %q", leaf)
	return nil
}
