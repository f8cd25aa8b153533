//go:build linux

package nestedauraed

import (
	"github.com/vishvananda/netlink"
)

// BringUpLoopback sets the "lo" interface up inside the caller's current
// network namespace. A freshly unshared network namespace starts with
// loopback present but administratively down, which is enough to break
// anything in the cell that binds to 127.0.0.1; the original isolation
// control left this as an unfilled stub. SetupChild calls this when the
// process was cloned with network isolation.
func BringUpLoopback() error {
	link, err := netlink.LinkByName("lo")
	if err != nil {
		return wrap("lookup lo interface", err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return wrap("set lo up", err)
	}
	return nil
}
