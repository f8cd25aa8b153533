//go:build linux

// Package cgroups validates that the host the daemon is starting on
// actually has the cgroup v2 controllers every cell depends on, so
// allocation failures surface as one clear startup error instead of a
// confusing failure the first time a cell is allocated.
package cgroups

import (
	"fmt"

	"github.com/containerd/cgroups"
	"github.com/containerd/cgroups/v3/cgroup2"
)

// requiredControllers are the controllers cgroupspec.Spec can configure;
// Validate fails if the host is missing any of them.
var requiredControllers = []string{"cpu", "cpuset", "memory"}

// Validate fails fast if the host is not running unified (v2) cgroups,
// or is missing a controller cgroupspec.Spec can configure.
func Validate(root string) error {
	if cgroups.Mode() != cgroups.Unified {
		return fmt.Errorf("cgroup v2 (unified hierarchy) is required, found legacy/hybrid cgroups")
	}

	manager, err := cgroup2.LoadManager(root, "/")
	if err != nil {
		return fmt.Errorf("loading root cgroup manager at %s: %w", root, err)
	}
	controllers, err := manager.RootControllers()
	if err != nil {
		return fmt.Errorf("reading root controllers: %w", err)
	}

	have := make(map[string]struct{}, len(controllers))
	for _, c := range controllers {
		have[c] = struct{}{}
	}
	for _, want := range requiredControllers {
		if _, ok := have[want]; !ok {
			return fmt.Errorf("cgroup v2 controller %q not available under %s", want, root)
		}
	}
	return nil
}
